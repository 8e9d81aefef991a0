package live_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaamkhoj/jobboard/internal/aggregator"
	"kaamkhoj/jobboard/internal/live"
	"kaamkhoj/jobboard/internal/model"
	"kaamkhoj/jobboard/internal/provider"
)

var discard = slog.New(slog.DiscardHandler)

type liveResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Data    []model.JobListing `json:"data"`
	Total   int                `json:"total"`
}

// stack wires real adapters against fake upstreams, like serve does.
type stack struct {
	mux *http.ServeMux
}

func newStack(t *testing.T, adzuna, remoteok http.HandlerFunc) *stack {
	t.Helper()
	az := httptest.NewServer(adzuna)
	t.Cleanup(az.Close)
	ro := httptest.NewServer(remoteok)
	t.Cleanup(ro.Close)

	a := provider.NewAdzuna(provider.AdzunaConfig{
		BaseURL: az.URL, AppID: "id", AppKey: "key", Timeout: 100 * time.Millisecond,
	}, discard)
	r := provider.NewRemoteOK(provider.RemoteOKConfig{BaseURL: ro.URL, Timeout: time.Second}, discard)

	svc := live.NewService(aggregator.New(discard, a, r), r, live.Config{}, discard)
	mux := http.NewServeMux()
	live.NewHandler(svc, discard).RegisterRoutes(mux)
	return &stack{mux: mux}
}

func (s *stack) get(t *testing.T, target string) (*httptest.ResponseRecorder, liveResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body liveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func hangingUpstream(w http.ResponseWriter, r *http.Request) {
	select {
	case <-time.After(2 * time.Second):
	case <-r.Context().Done():
	}
}

func failingUpstream(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusServiceUnavailable)
}

func remoteOKBody(records ...string) string {
	return "[" + strings.Join(append([]string{`{"legal":"terms"}`}, records...), ",") + "]"
}

func remoteRecord(id, position, company, date string, tags ...string) string {
	tagJSON, _ := json.Marshal(tags)
	return fmt.Sprintf(`{"id":%q,"position":%q,"company":%q,"description":"<p>Remote role</p>","url":"https://r/%s","date":%q,"tags":%s}`,
		id, position, company, id, date, tagJSON)
}

func TestLive_AdzunaTimesOutRemoteOKServes(t *testing.T) {
	s := newStack(t, hangingUpstream, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "designer", r.URL.Query().Get("position"))
		_, _ = w.Write([]byte(remoteOKBody(
			remoteRecord("1", "Product Designer", "Acme", "2024-01-01T00:00:00Z"),
			remoteRecord("2", "Illustrator", "Ink", "2024-03-01T00:00:00Z"),
			remoteRecord("3", "Motion Artist", "Pixel", "2024-02-01T00:00:00Z", "ui designer"),
		)))
	})

	rec, body := s.get(t, "/api/jobs/live?category=design")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
	assert.Equal(t, 3, body.Total)
	require.Len(t, body.Data, 3)
	assert.Equal(t, []string{"2", "3", "1"}, []string{body.Data[0].ID, body.Data[1].ID, body.Data[2].ID})
	for _, j := range body.Data {
		assert.Equal(t, model.SourceRemoteOK, j.Source)
		assert.Equal(t, "Remote role", j.Description)
	}
}

func TestLive_BothProvidersFailIsEmptySuccess(t *testing.T) {
	s := newStack(t, failingUpstream, failingUpstream)

	rec, body := s.get(t, "/api/jobs/live?category=sales")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)
	assert.Equal(t, 0, body.Total)
	assert.NotNil(t, body.Data)
	assert.Empty(t, body.Data)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestLive_CapsAtForty(t *testing.T) {
	records := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		records = append(records, remoteRecord(
			fmt.Sprintf("%d", i), fmt.Sprintf("Backend Developer %d", i), "Acme",
			time.Date(2024, 1, 1, 0, i, 0, 0, time.UTC).Format(time.RFC3339)))
	}
	s := newStack(t, failingUpstream, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(remoteOKBody(records...)))
	})

	_, body := s.get(t, "/api/jobs/live")
	assert.Equal(t, 40, body.Total)
	require.Len(t, body.Data, 40)
	assert.Equal(t, "59", body.Data[0].ID, "newest first")
}

func TestLive_MergesProvidersDedupsAndFilters(t *testing.T) {
	adzuna := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "software engineer", r.URL.Query().Get("what"))
		_, _ = w.Write([]byte(`{"results":[
			{"id":"a1","title":"Software Engineer","company":{"display_name":"Acme"},"created":"2024-01-10T00:00:00Z"},
			{"id":"a2","title":"Chef","company":{"display_name":"Diner"},"description":"Cook food","created":"2024-05-10T00:00:00Z"}
		]}`))
	}
	remote := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "software engineer", r.URL.Query().Get("position"))
		_, _ = w.Write([]byte(remoteOKBody(
			remoteRecord("r1", "software engineer", "ACME", "2024-02-01T00:00:00Z"),
			remoteRecord("r2", "Staff Engineer", "Beta", "2024-03-01T00:00:00Z", "golang", "backend"),
		)))
	}
	s := newStack(t, adzuna, remote)

	_, body := s.get(t, "/api/jobs/live?category=nonsense")
	require.Equal(t, 2, body.Total)
	assert.Equal(t, "r2", body.Data[0].ID)
	assert.Equal(t, "a1", body.Data[1].ID, "Adzuna wins the duplicate")
	assert.Equal(t, model.SourceAdzuna, body.Data[1].Source)
}

func TestLive_CancelledRequestIsError(t *testing.T) {
	s := newStack(t, failingUpstream, failingUpstream)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/live", nil).WithContext(ctx))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body liveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Failed to fetch live jobs", body.Error)
	assert.Equal(t, 0, body.Total)
	assert.NotNil(t, body.Data)
	assert.NotContains(t, rec.Body.String(), "context canceled", "detail must not leak")
}

func TestRemotePassthrough(t *testing.T) {
	s := newStack(t, failingUpstream, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Acme", r.URL.Query().Get("company"))
		_, _ = w.Write([]byte(remoteOKBody(
			remoteRecord("1", "A", "Acme", ""),
			remoteRecord("2", "B", "Acme", ""),
			remoteRecord("3", "C", "Acme", ""),
		)))
	})

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/remote?company=Acme&limit=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                   `json:"success"`
		Data    []provider.RemoteOKJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "<p>Remote role</p>", body.Data[0].Description)
}
