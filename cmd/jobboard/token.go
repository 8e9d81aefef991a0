package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kaamkhoj/jobboard/internal/auth"
	"kaamkhoj/jobboard/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the admin job posting routes",
	RunE:  runToken,
}

var (
	tokenSubject string
	tokenRole    string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "Token subject (who the token is issued to)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleAdmin, "Role claim")

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	token, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiration()).GenerateToken(tokenSubject, tokenRole)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
