package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"kaamkhoj/jobboard/internal/category"
	"kaamkhoj/jobboard/internal/config"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Fetch live listings for a category and print them as JSON",
	Long:  "Run one live aggregation against Adzuna and Remote OK without starting the server. Useful for checking provider credentials.",
	RunE:  runLive,
}

var (
	liveCategory string
	liveVerbose  bool
)

func init() {
	liveCmd.Flags().StringVarP(&liveCategory, "category", "c", category.Default, "Category key (unknown keys fall back to the default)")
	liveCmd.Flags().BoolVarP(&liveVerbose, "verbose", "v", false, "Log provider activity to stderr")

	rootCmd.AddCommand(liveCmd)
}

func runLive(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level := slog.LevelWarn
	if liveVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	svc, _, _ := newLiveService(cfg, logger)
	res, err := svc.Live(cmd.Context(), liveCategory)
	if err != nil {
		return fmt.Errorf("live query: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"success":  true,
		"category": res.Category,
		"data":     res.Jobs,
		"total":    len(res.Jobs),
	})
}
