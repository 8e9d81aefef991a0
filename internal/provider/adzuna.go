package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kaamkhoj/jobboard/internal/metrics"
	"kaamkhoj/jobboard/internal/model"
)

const (
	AdzunaBaseURL        = "https://api.adzuna.com/v1/api/jobs"
	AdzunaDefaultCountry = "in"
	AdzunaTimeout        = 15 * time.Second
	adzunaPageSize       = 20
)

var (
	adzunaEnvelope = mustSchema(`{
		"type": "object",
		"required": ["results"],
		"properties": {"results": {"type": "array"}}
	}`)

	// adzunaRecord rejects results whose fields carry the wrong JSON type.
	adzunaRecord = mustSchema(`{
		"type": "object",
		"definitions": {
			"text": {"type": ["string", "null"]},
			"amount": {"type": ["number", "null"]},
			"labelled": {
				"type": ["object", "null"],
				"properties": {"display_name": {"$ref": "#/definitions/text"}}
			}
		},
		"properties": {
			"id": {"type": ["string", "number", "null"]},
			"title": {"$ref": "#/definitions/text"},
			"description": {"$ref": "#/definitions/text"},
			"snippet": {"$ref": "#/definitions/text"},
			"company": {"$ref": "#/definitions/labelled"},
			"company_name": {"$ref": "#/definitions/text"},
			"location": {"$ref": "#/definitions/labelled"},
			"location_name": {"$ref": "#/definitions/text"},
			"salary_min": {"$ref": "#/definitions/amount"},
			"salary_max": {"$ref": "#/definitions/amount"},
			"redirect_url": {"$ref": "#/definitions/text"},
			"url": {"$ref": "#/definitions/text"},
			"created": {"$ref": "#/definitions/text"},
			"posted": {"$ref": "#/definitions/text"}
		}
	}`)
)

// AdzunaConfig configures the Adzuna adapter. Zero values fall back to the
// package defaults.
type AdzunaConfig struct {
	BaseURL   string
	AppID     string
	AppKey    string
	Country   string // "in", "gb", "us", …
	UserAgent string
	Timeout   time.Duration
}

// Adzuna fetches job offers from the Adzuna public search API.
// If AppID or AppKey is empty, Fetch returns an empty slice without touching
// the network.
type Adzuna struct {
	cfg    AdzunaConfig
	client *http.Client
	logger *slog.Logger
}

// NewAdzuna constructs an adapter with its own bounded HTTP client.
func NewAdzuna(cfg AdzunaConfig, logger *slog.Logger) *Adzuna {
	if cfg.BaseURL == "" {
		cfg.BaseURL = AdzunaBaseURL
	}
	if cfg.Country == "" {
		cfg.Country = AdzunaDefaultCountry
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = AdzunaTimeout
	}
	return &Adzuna{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With("component", "adzuna"),
	}
}

// adzunaResponse mirrors the top-level Adzuna JSON response. Results stay
// raw so each one is validated on its own.
type adzunaResponse struct {
	Results []json.RawMessage `json:"results"`
	Count   int               `json:"count"`
}

// adzunaResult mirrors a single Adzuna job listing. The *Name, Snippet, URL
// and Posted fields are alternates some result variants carry.
type adzunaResult struct {
	ID           flexibleID     `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Snippet      string         `json:"snippet"`
	Company      adzunaLabelled `json:"company"`
	CompanyName  string         `json:"company_name"`
	Location     adzunaLabelled `json:"location"`
	LocationName string         `json:"location_name"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	URL          string         `json:"url"`
	Created      string         `json:"created"`
	Posted       string         `json:"posted"`
}

type adzunaLabelled struct {
	DisplayName string `json:"display_name"`
}

// Name implements aggregator.Source.
func (a *Adzuna) Name() string { return model.SourceAdzuna }

// Search implements aggregator.Source. Adzuna paginates server-side so the
// query limit is not applied; the first page is returned.
func (a *Adzuna) Search(ctx context.Context, q model.LiveQuery) []model.JobListing {
	return a.Fetch(ctx, q.Term, q.Location, 1)
}

// Fetch retrieves one page of offers for query and location. It never fails:
// missing credentials, transport errors, non-2xx statuses and unexpected
// payloads are logged and yield an empty slice.
func (a *Adzuna) Fetch(ctx context.Context, query, location string, page int) []model.JobListing {
	if a.cfg.AppID == "" || a.cfg.AppKey == "" {
		a.logger.Warn("ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping fetch")
		metrics.ProviderFetchTotal.WithLabelValues(model.SourceAdzuna, metrics.OutcomeSkipped).Inc()
		return []model.JobListing{}
	}
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}
	if page < 1 {
		page = 1
	}

	start := time.Now()
	defer func() {
		metrics.ProviderFetchDuration.WithLabelValues(model.SourceAdzuna).Observe(time.Since(start).Seconds())
	}()

	body, err := a.get(ctx, query, location, page)
	if err != nil {
		a.logger.Error("fetch failed", "query", query, "page", page, "err", err)
		metrics.ProviderFetchTotal.WithLabelValues(model.SourceAdzuna, metrics.OutcomeError).Inc()
		return []model.JobListing{}
	}

	if err := conform(adzunaEnvelope, body); err != nil {
		a.logger.Warn("unexpected response shape", "query", query, "err", err)
		metrics.ProviderFetchTotal.WithLabelValues(model.SourceAdzuna, metrics.OutcomeMalformed).Inc()
		return []model.JobListing{}
	}

	var apiResp adzunaResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		a.logger.Warn("json unmarshal failed", "query", query, "err", err)
		metrics.ProviderFetchTotal.WithLabelValues(model.SourceAdzuna, metrics.OutcomeMalformed).Inc()
		return []model.JobListing{}
	}

	now := time.Now().UTC()
	results := make([]model.JobListing, 0, len(apiResp.Results))
	for i, raw := range apiResp.Results {
		r, err := decodeAdzunaRecord(raw)
		if err != nil {
			a.logger.Debug("skipping malformed record", "index", i, "err", err)
			continue
		}
		results = append(results, a.normalize(r, now))
	}

	metrics.ProviderFetchTotal.WithLabelValues(model.SourceAdzuna, metrics.OutcomeOK).Inc()
	a.logger.Debug("fetched", "query", query, "page", page, "count", len(results))
	return results
}

func decodeAdzunaRecord(raw json.RawMessage) (adzunaResult, error) {
	var r adzunaResult
	if err := conform(adzunaRecord, raw); err != nil {
		return r, err
	}
	err := json.Unmarshal(raw, &r)
	return r, err
}

func (a *Adzuna) get(ctx context.Context, query, location string, page int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s/search/%d", strings.TrimRight(a.cfg.BaseURL, "/"), a.cfg.Country, page)

	params := url.Values{}
	params.Set("app_id", a.cfg.AppID)
	params.Set("app_key", a.cfg.AppKey)
	params.Set("what", query)
	params.Set("where", location)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("adzuna returned %d", resp.StatusCode)
	}
	return body, nil
}

func (a *Adzuna) normalize(r adzunaResult, now time.Time) model.JobListing {
	id := string(r.ID)
	if id == "" {
		id = placeholderID(model.SourceAdzuna, now)
	}
	return model.JobListing{
		ID:          id,
		Title:       firstNonEmpty(r.Title, model.FallbackTitle),
		Company:     firstNonEmpty(r.Company.DisplayName, r.CompanyName, model.FallbackCompany),
		Location:    firstNonEmpty(r.Location.DisplayName, r.LocationName, model.FallbackLocation),
		Salary:      formatSalary(a.cfg.Country, r.SalaryMin, r.SalaryMax),
		Description: firstNonEmpty(r.Description, r.Snippet, model.FallbackDescription),
		URL:         firstNonEmpty(r.RedirectURL, r.URL, model.FallbackURL),
		PostedDate:  firstNonEmpty(r.Created, r.Posted, now.Format(time.RFC3339)),
		Source:      model.SourceAdzuna,
	}
}
