// Package scheduler runs the periodic provider availability probe.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"kaamkhoj/jobboard/internal/metrics"
	"kaamkhoj/jobboard/internal/model"
	"kaamkhoj/jobboard/internal/provider"
)

// DefaultInterval is used when no probe interval is configured. Each probe
// costs one Adzuna call against the 1000 calls/month free tier.
const DefaultInterval = 6 * time.Hour

// Source is a provider adapter that can be probed.
type Source interface {
	Name() string
	Search(ctx context.Context, q model.LiveQuery) []model.JobListing
}

// StatusReporter receives the outcome of each probe.
type StatusReporter interface {
	SetProviderStatus(source string, up bool)
}

// Scheduler wraps robfig/cron and manages the probe loop.
type Scheduler struct {
	cron     *cron.Cron
	sources  []Source
	reporter StatusReporter
	spec     string // cron spec, e.g. "@every 6h0m0s"
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// New creates a Scheduler that probes every interval.
func New(sources []Source, reporter StatusReporter, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sources:  sources,
		reporter: reporter,
		spec:     fmt.Sprintf("@every %s", interval),
		logger:   logger.With("component", "scheduler"),
	}
}

// Start registers the job and starts the scheduler. It also runs one probe
// immediately so health reflects reality without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Probe(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("cron started", "spec", s.spec)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Probe(ctx)
	}()
	return nil
}

// Stop halts the scheduler and waits for running probes.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("cron stopped")
}

// Probe queries every source once with the default term and publishes the
// listing counts. Sources are probed one after another.
func (s *Scheduler) Probe(ctx context.Context) {
	q := model.LiveQuery{Term: provider.DefaultQuery, Limit: 10}
	for _, src := range s.sources {
		if ctx.Err() != nil {
			return
		}
		n := len(s.probeOne(ctx, src, q))
		metrics.ProviderProbeListings.WithLabelValues(src.Name()).Set(float64(n))
		if s.reporter != nil {
			s.reporter.SetProviderStatus(src.Name(), n > 0)
		}
		s.logger.Info("provider probed", "source", src.Name(), "listings", n)
	}
}

func (s *Scheduler) probeOne(ctx context.Context, src Source, q model.LiveQuery) (jobs []model.JobListing) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("provider probe panicked", "source", src.Name(), "panic", rec)
			jobs = nil
		}
	}()
	return src.Search(ctx, q)
}
