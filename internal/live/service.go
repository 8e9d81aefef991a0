// Package live serves job listings aggregated on demand from the external
// providers. Nothing is cached: every call re-fetches.
package live

import (
	"context"
	"fmt"
	"log/slog"

	"kaamkhoj/jobboard/internal/category"
	"kaamkhoj/jobboard/internal/model"
	"kaamkhoj/jobboard/internal/provider"
)

const (
	DefaultResultCap   = 40
	DefaultRemoteLimit = 100
)

// Searcher is the aggregator as seen by this package.
type Searcher interface {
	Search(ctx context.Context, q model.LiveQuery, sources ...string) []model.JobListing
}

// RawFetcher returns Remote OK records without normalisation.
type RawFetcher interface {
	FetchRaw(ctx context.Context, f provider.RemoteOKFilters) []provider.RemoteOKJob
}

// Config tunes the live query. Zero values use the package defaults.
type Config struct {
	ResultCap   int
	RemoteLimit int
}

// Result is a capped, category-filtered slice of live listings.
type Result struct {
	Category string
	Jobs     []model.JobListing
}

// Service drives one live query: resolve category, fan out, filter, cap.
// It is safe for concurrent use; no state is shared between calls.
type Service struct {
	searcher Searcher
	remote   RawFetcher
	cfg      Config
	logger   *slog.Logger
}

// NewService returns a Service. remote may be nil when the passthrough route
// is not served.
func NewService(searcher Searcher, remote RawFetcher, cfg Config, logger *slog.Logger) *Service {
	if cfg.ResultCap <= 0 {
		cfg.ResultCap = DefaultResultCap
	}
	if cfg.RemoteLimit <= 0 {
		cfg.RemoteLimit = DefaultRemoteLimit
	}
	return &Service{
		searcher: searcher,
		remote:   remote,
		cfg:      cfg,
		logger:   logger.With("component", "live"),
	}
}

// Live returns listings for categoryKey. Provider failures never surface
// here; an error means the request itself was abandoned.
func (s *Service) Live(ctx context.Context, categoryKey string) (Result, error) {
	key, keywords := category.Resolve(categoryKey)
	primary := keywords[0]
	s.logger.Info("fetching live jobs", "category", key, "query", primary)

	jobs := s.searcher.Search(ctx, model.LiveQuery{Term: primary, Limit: s.cfg.RemoteLimit},
		model.SourceAdzuna, model.SourceRemoteOK)
	if err := ctx.Err(); err != nil {
		return Result{Category: key}, fmt.Errorf("live search for %q: %w", key, err)
	}
	fetched := len(jobs)

	jobs = category.Filter(jobs, key)
	filtered := len(jobs)

	if len(jobs) > s.cfg.ResultCap {
		jobs = jobs[:s.cfg.ResultCap]
	}

	s.logger.Info("live jobs ready", "category", key, "fetched", fetched, "matched", filtered, "returned", len(jobs))
	return Result{Category: key, Jobs: jobs}, nil
}

// Remote proxies Remote OK records as published.
func (s *Service) Remote(ctx context.Context, f provider.RemoteOKFilters) ([]provider.RemoteOKJob, error) {
	if s.remote == nil {
		return nil, fmt.Errorf("remote passthrough not configured")
	}
	jobs := s.remote.FetchRaw(ctx, f)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("remote fetch: %w", err)
	}
	return jobs, nil
}
