// Command jobboard runs the KaamKhoj job board API and its maintenance tasks.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kaamkhoj/jobboard/internal/aggregator"
	"kaamkhoj/jobboard/internal/config"
	"kaamkhoj/jobboard/internal/live"
	"kaamkhoj/jobboard/internal/provider"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:     "jobboard",
	Short:   "KaamKhoj job board API server",
	Long:    "jobboard serves curated job postings and live listings aggregated from Adzuna and Remote OK.",
	Version: version,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// providers builds both adapters from cfg, in aggregation precedence order.
func providers(cfg *config.Config, logger *slog.Logger) (*provider.Adzuna, *provider.RemoteOK) {
	adzuna := provider.NewAdzuna(provider.AdzunaConfig{
		BaseURL:   cfg.AdzunaBaseURL,
		AppID:     cfg.AdzunaAppID,
		AppKey:    cfg.AdzunaAppKey,
		Country:   cfg.AdzunaCountry,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.AdzunaTimeout,
	}, logger)
	remoteok := provider.NewRemoteOK(provider.RemoteOKConfig{
		BaseURL:   cfg.RemoteOKBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RemoteOKTimeout,
	}, logger)
	return adzuna, remoteok
}

// newLiveService wires the live query pipeline.
func newLiveService(cfg *config.Config, logger *slog.Logger) (*live.Service, *provider.Adzuna, *provider.RemoteOK) {
	adzuna, remoteok := providers(cfg, logger)
	agg := aggregator.New(logger, adzuna, remoteok)
	svc := live.NewService(agg, remoteok, live.Config{
		ResultCap:   cfg.LiveResultCap,
		RemoteLimit: cfg.LiveRemoteLimit,
	}, logger)
	return svc, adzuna, remoteok
}
