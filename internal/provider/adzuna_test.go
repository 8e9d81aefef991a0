package provider

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaamkhoj/jobboard/internal/model"
)

var discard = slog.New(slog.DiscardHandler)

func newTestAdzuna(baseURL string) *Adzuna {
	return NewAdzuna(AdzunaConfig{
		BaseURL: baseURL,
		AppID:   "id",
		AppKey:  "key",
		Country: "in",
		Timeout: time.Second,
	}, discard)
}

func TestAdzunaFetch_NormalizesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/in/search/2", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "id", q.Get("app_id"))
		assert.Equal(t, "key", q.Get("app_key"))
		assert.Equal(t, "golang", q.Get("what"))
		assert.Equal(t, "pune", q.Get("where"))
		assert.Equal(t, "20", q.Get("results_per_page"))
		assert.Equal(t, "date", q.Get("sort_by"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":2,"results":[
			{"id":"123","title":"Go Developer","description":"Build services",
			 "company":{"display_name":"Acme"},"location":{"display_name":"Pune"},
			 "salary_min":50000,"salary_max":90000,"redirect_url":"https://x/1",
			 "created":"2024-03-01T10:00:00Z"},
			{"id":456}
		]}`))
	}))
	defer server.Close()

	jobs := newTestAdzuna(server.URL).Fetch(context.Background(), "golang", "pune", 2)
	require.Len(t, jobs, 2)

	first := jobs[0]
	assert.Equal(t, "123", first.ID)
	assert.Equal(t, "Go Developer", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Pune", first.Location)
	require.NotNil(t, first.Salary)
	assert.Equal(t, "₹50000 - ₹90000", *first.Salary)
	assert.Equal(t, "https://x/1", first.URL)
	assert.Equal(t, "2024-03-01T10:00:00Z", first.PostedDate)
	assert.Equal(t, model.SourceAdzuna, first.Source)

	second := jobs[1]
	assert.Equal(t, "456", second.ID)
	assert.Equal(t, model.FallbackTitle, second.Title)
	assert.Equal(t, model.FallbackCompany, second.Company)
	assert.Equal(t, model.FallbackLocation, second.Location)
	assert.Equal(t, model.FallbackDescription, second.Description)
	assert.Equal(t, model.FallbackURL, second.URL)
	assert.Nil(t, second.Salary)
	_, err := time.Parse(time.RFC3339, second.PostedDate)
	assert.NoError(t, err, "missing date should fall back to fetch time")
}

func TestAdzunaFetch_AlternateFieldNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"title":"QA","company_name":"Beta",
			"location_name":"Delhi","snippet":"short","url":"https://y","posted":"2024-01-01"}]}`))
	}))
	defer server.Close()

	jobs := newTestAdzuna(server.URL).Fetch(context.Background(), "qa", "", 1)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Beta", jobs[0].Company)
	assert.Equal(t, "Delhi", jobs[0].Location)
	assert.Equal(t, "short", jobs[0].Description)
	assert.Equal(t, "https://y", jobs[0].URL)
	assert.Equal(t, "2024-01-01", jobs[0].PostedDate)
	assert.Contains(t, jobs[0].ID, "adzuna-", "missing id should get a placeholder")
}

func TestAdzunaFetch_SalaryRequiresBothBounds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"id":"1","salary_min":40000},{"id":"2","salary_max":40000}]}`))
	}))
	defer server.Close()

	jobs := newTestAdzuna(server.URL).Fetch(context.Background(), "", "", 1)
	require.Len(t, jobs, 2)
	assert.Nil(t, jobs[0].Salary)
	assert.Nil(t, jobs[1].Salary)
}

func TestAdzunaFetch_DefaultsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultQuery, r.URL.Query().Get("what"))
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	jobs := newTestAdzuna(server.URL).Fetch(context.Background(), "  ", "", 0)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestAdzunaFetch_MissingCredentialsSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	a := NewAdzuna(AdzunaConfig{BaseURL: server.URL, AppID: "id"}, discard)
	jobs := a.Fetch(context.Background(), "developer", "", 1)
	assert.Empty(t, jobs)
	assert.Zero(t, calls.Load())
}

func TestAdzunaFetch_FailsClosed(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"rate limited": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"missing results": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"count":0}`))
		},
		"results not array": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":{"a":1}}`))
		},
		"null results": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":null}`))
		},
		"not json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>maintenance</html>`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(h)
			defer server.Close()

			jobs := newTestAdzuna(server.URL).Fetch(context.Background(), "developer", "", 1)
			assert.NotNil(t, jobs)
			assert.Empty(t, jobs)
		})
	}
}

func TestAdzunaFetch_SkipsMalformedRecordsOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results":[
			{"id":"1","title":"Go Developer","company":{"display_name":"Acme"}},
			{"id":"2","title":"Bad Salary","salary_min":"50000"},
			{"id":"3","title":"Bad Company","company":"Acme"},
			{"id":true},
			"not-an-object",
			{"id":"4","title":"Rust Developer","salary_min":null}
		]}`))
	}))
	defer server.Close()

	jobs := newTestAdzuna(server.URL).Fetch(context.Background(), "developer", "", 1)
	require.Len(t, jobs, 2)
	assert.Equal(t, "1", jobs[0].ID)
	assert.Equal(t, "Acme", jobs[0].Company)
	assert.Equal(t, "4", jobs[1].ID)
}

func TestAdzunaFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	a := NewAdzuna(AdzunaConfig{BaseURL: server.URL, AppID: "id", AppKey: "key", Timeout: 50 * time.Millisecond}, discard)
	start := time.Now()
	jobs := a.Fetch(context.Background(), "developer", "", 1)
	assert.Empty(t, jobs)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFormatSalary_CurrencyByCountry(t *testing.T) {
	s := formatSalary("gb", 30000, 45000.5)
	require.NotNil(t, s)
	assert.Equal(t, "£30000 - £45000.50", *s)

	s = formatSalary("zz", 1, 2)
	require.NotNil(t, s)
	assert.Equal(t, "1 - 2", *s)

	assert.Nil(t, formatSalary("in", 0, 0))
}
