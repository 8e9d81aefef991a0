// Package aggregator merges live listings from several provider adapters.
//
// Sources run concurrently and are joined settle-all style: a source that
// returns nothing, times out or panics simply contributes no listings.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"kaamkhoj/jobboard/internal/model"
)

// Source is a provider adapter. Search must never block past its own
// timeout and reports failure as an empty slice.
type Source interface {
	Name() string
	Search(ctx context.Context, q model.LiveQuery) []model.JobListing
}

// Aggregator fans a query out to registered sources.
// Registration order decides which duplicate survives.
type Aggregator struct {
	sources []Source
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// New returns an Aggregator over sources, in precedence order.
func New(logger *slog.Logger, sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		logger:  logger.With("component", "aggregator"),
		tracer:  otel.Tracer("jobboard/aggregator"),
		now:     time.Now,
	}
}

// SourceNames lists registered sources in precedence order.
func (a *Aggregator) SourceNames() []string {
	names := make([]string, 0, len(a.sources))
	for _, s := range a.sources {
		names = append(names, s.Name())
	}
	return names
}

// Search queries every registered source named in sources (all of them when
// sources is empty), then deduplicates and sorts newest first. It returns an
// empty, non-nil slice when nothing was fetched.
func (a *Aggregator) Search(ctx context.Context, q model.LiveQuery, sources ...string) []model.JobListing {
	fetchedAt := a.now()
	selected := a.selectSources(sources)

	batches := make([][]model.JobListing, len(selected))
	var g errgroup.Group
	for i, src := range selected {
		g.Go(func() error {
			batches[i] = a.run(ctx, src, q)
			return nil
		})
	}
	_ = g.Wait() // tasks never return an error

	var jobs []model.JobListing
	for _, b := range batches {
		jobs = append(jobs, b...)
	}
	if len(jobs) == 0 {
		a.logger.Warn("no listings from any source", "term", q.Term, "sources", len(selected))
		return []model.JobListing{}
	}

	jobs = Dedup(jobs)
	SortByPostedDate(jobs, fetchedAt)
	return jobs
}

func (a *Aggregator) selectSources(names []string) []Source {
	if len(names) == 0 {
		return a.sources
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	var out []Source
	for _, s := range a.sources {
		if want[s.Name()] {
			out = append(out, s)
		}
	}
	return out
}

// run calls one source, converting a panic into an empty result.
func (a *Aggregator) run(ctx context.Context, src Source, q model.LiveQuery) (jobs []model.JobListing) {
	ctx, span := a.tracer.Start(ctx, "source."+src.Name(), trace.WithAttributes(
		attribute.String("source", src.Name()),
		attribute.String("query.term", q.Term),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("source panicked", "source", src.Name(), "panic", fmt.Sprint(r))
			span.SetAttributes(attribute.Bool("source.panicked", true))
			jobs = nil
		}
	}()

	jobs = src.Search(ctx, q)
	span.SetAttributes(attribute.Int("source.listings", len(jobs)))
	a.logger.Debug("source settled", "source", src.Name(), "count", len(jobs))
	return jobs
}

// dedupKey is the identity used for deduplication. IDs and sources are
// deliberately ignored.
func dedupKey(j model.JobListing) string {
	return strings.ToLower(j.Title) + "\x00" + strings.ToLower(j.Company)
}

// Dedup drops every listing whose case-insensitive (title, company) pair was
// already seen earlier in jobs. The first occurrence wins.
func Dedup(jobs []model.JobListing) []model.JobListing {
	seen := make(map[string]struct{}, len(jobs))
	out := make([]model.JobListing, 0, len(jobs))
	for _, j := range jobs {
		k := dedupKey(j)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, j)
	}
	return out
}

// postedLayouts are tried in order when parsing PostedDate.
var postedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePostedDate parses the date formats the providers are known to send.
func ParsePostedDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range postedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SortByPostedDate orders jobs newest first, in place. Unparseable dates
// sort as fallback. Ties keep their input order.
func SortByPostedDate(jobs []model.JobListing, fallback time.Time) {
	keys := make([]time.Time, len(jobs))
	for i, j := range jobs {
		t, ok := ParsePostedDate(j.PostedDate)
		if !ok {
			t = fallback
		}
		keys[i] = t
	}
	sort.Stable(byPosted{jobs: jobs, keys: keys})
}

type byPosted struct {
	jobs []model.JobListing
	keys []time.Time
}

func (b byPosted) Len() int           { return len(b.jobs) }
func (b byPosted) Less(i, j int) bool { return b.keys[i].After(b.keys[j]) }
func (b byPosted) Swap(i, j int) {
	b.jobs[i], b.jobs[j] = b.jobs[j], b.jobs[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
