package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kaamkhoj/jobboard/internal/metrics"
	"kaamkhoj/jobboard/internal/model"
)

const (
	RemoteOKBaseURL = "https://remoteok.io/api"
	RemoteOKTimeout = 10 * time.Second
)

var (
	remoteOKEnvelope = mustSchema(`{"type": "array"}`)

	// remoteOKRecord rejects records whose fields carry the wrong JSON type.
	remoteOKRecord = mustSchema(`{
		"type": "object",
		"definitions": {"text": {"type": ["string", "null"]}},
		"properties": {
			"id": {"type": ["string", "number", "null"]},
			"slug": {"$ref": "#/definitions/text"},
			"position": {"$ref": "#/definitions/text"},
			"company": {"$ref": "#/definitions/text"},
			"company_logo": {"$ref": "#/definitions/text"},
			"location": {"$ref": "#/definitions/text"},
			"tags": {"type": ["array", "null"], "items": {"type": "string"}},
			"description": {"$ref": "#/definitions/text"},
			"url": {"$ref": "#/definitions/text"},
			"date": {"$ref": "#/definitions/text"},
			"apply_url": {"$ref": "#/definitions/text"}
		}
	}`)
)

// RemoteOKConfig configures the Remote OK adapter.
type RemoteOKConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// RemoteOKFilters narrows a Remote OK fetch. Limit <= 0 means no cap.
type RemoteOKFilters struct {
	Position string
	Company  string
	Limit    int
}

// RemoteOKJob mirrors a single Remote OK record as published by the API.
type RemoteOKJob struct {
	ID          flexibleID `json:"id"`
	Slug        string     `json:"slug"`
	Position    string     `json:"position"`
	Company     string     `json:"company"`
	CompanyLogo string     `json:"company_logo"`
	Location    string     `json:"location"`
	Tags        []string   `json:"tags"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Date        string     `json:"date"`
	ApplyURL    string     `json:"apply_url"`
}

// RemoteOK fetches remote job listings. The API needs no credentials; the
// first array element is a legal notice, not a job.
type RemoteOK struct {
	cfg    RemoteOKConfig
	client *http.Client
	logger *slog.Logger
}

// NewRemoteOK constructs an adapter with its own bounded HTTP client.
func NewRemoteOK(cfg RemoteOKConfig, logger *slog.Logger) *RemoteOK {
	if cfg.BaseURL == "" {
		cfg.BaseURL = RemoteOKBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = RemoteOKTimeout
	}
	return &RemoteOK{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "remoteok"),
	}
}

// Name implements aggregator.Source.
func (r *RemoteOK) Name() string { return model.SourceRemoteOK }

// Search implements aggregator.Source. Location is ignored: every Remote OK
// job is remote.
func (r *RemoteOK) Search(ctx context.Context, q model.LiveQuery) []model.JobListing {
	return r.Fetch(ctx, RemoteOKFilters{Position: q.Term, Limit: q.Limit})
}

// Fetch returns normalised listings. An empty position defaults to
// DefaultQuery.
func (r *RemoteOK) Fetch(ctx context.Context, f RemoteOKFilters) []model.JobListing {
	if strings.TrimSpace(f.Position) == "" {
		f.Position = DefaultQuery
	}
	raw := r.FetchRaw(ctx, f)

	now := time.Now().UTC()
	results := make([]model.JobListing, 0, len(raw))
	for _, j := range raw {
		results = append(results, normalizeRemoteOK(j, now))
	}
	return results
}

// FetchRaw returns the provider records untouched, minus the metadata
// element. It never fails; errors are logged and yield an empty slice.
func (r *RemoteOK) FetchRaw(ctx context.Context, f RemoteOKFilters) []RemoteOKJob {
	start := time.Now()
	defer func() {
		metrics.ProviderFetchDuration.WithLabelValues(model.SourceRemoteOK).Observe(time.Since(start).Seconds())
	}()

	body, err := r.get(ctx, f)
	if err != nil {
		r.logger.Error("fetch failed", "position", f.Position, "err", err)
		metrics.ProviderFetchTotal.WithLabelValues(model.SourceRemoteOK, metrics.OutcomeError).Inc()
		return []RemoteOKJob{}
	}

	if err := conform(remoteOKEnvelope, body); err != nil {
		r.logger.Warn("unexpected response shape", "position", f.Position, "err", err)
		metrics.ProviderFetchTotal.WithLabelValues(model.SourceRemoteOK, metrics.OutcomeMalformed).Inc()
		return []RemoteOKJob{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		r.logger.Warn("json unmarshal failed", "err", err)
		metrics.ProviderFetchTotal.WithLabelValues(model.SourceRemoteOK, metrics.OutcomeMalformed).Inc()
		return []RemoteOKJob{}
	}

	jobs := make([]RemoteOKJob, 0, len(items))
	for i, item := range items {
		if i == 0 {
			continue // metadata
		}
		if err := conform(remoteOKRecord, item); err != nil {
			r.logger.Debug("skipping malformed record", "index", i, "err", err)
			continue
		}
		var j RemoteOKJob
		if err := json.Unmarshal(item, &j); err != nil {
			r.logger.Debug("skipping undecodable record", "index", i, "err", err)
			continue
		}
		jobs = append(jobs, j)
		if f.Limit > 0 && len(jobs) == f.Limit {
			break
		}
	}

	metrics.ProviderFetchTotal.WithLabelValues(model.SourceRemoteOK, metrics.OutcomeOK).Inc()
	r.logger.Debug("fetched", "position", f.Position, "count", len(jobs))
	return jobs
}

func (r *RemoteOK) get(ctx context.Context, f RemoteOKFilters) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	reqURL := r.cfg.BaseURL
	params := url.Values{}
	if f.Position != "" {
		params.Set("position", f.Position)
	}
	if f.Company != "" {
		params.Set("company", f.Company)
	}
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remoteok returned %d", resp.StatusCode)
	}
	return body, nil
}

func normalizeRemoteOK(j RemoteOKJob, now time.Time) model.JobListing {
	id := string(j.ID)
	if id == "" {
		id = placeholderID(model.SourceRemoteOK, now)
	}
	var tags []string
	if len(j.Tags) > 0 {
		tags = append(tags, j.Tags...)
	}
	return model.JobListing{
		ID:          id,
		Title:       firstNonEmpty(j.Position, model.FallbackTitle),
		Company:     firstNonEmpty(j.Company, model.FallbackCompany),
		Location:    firstNonEmpty(j.Location, model.FallbackLocation),
		Description: firstNonEmpty(StripHTML(j.Description), model.FallbackDescription),
		URL:         firstNonEmpty(j.URL, j.ApplyURL, model.FallbackURL),
		PostedDate:  firstNonEmpty(j.Date, now.Format(time.RFC3339)),
		Source:      model.SourceRemoteOK,
		Tags:        tags,
	}
}
