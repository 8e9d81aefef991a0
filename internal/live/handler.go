package live

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"kaamkhoj/jobboard/internal/httpx"
	"kaamkhoj/jobboard/internal/metrics"
	"kaamkhoj/jobboard/internal/model"
	"kaamkhoj/jobboard/internal/provider"
)

const defaultRemotePassthroughLimit = 20

// envelope is the response shape of GET /api/jobs/live.
type envelope struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	Data    []model.JobListing `json:"data"`
	Total   int                `json:"total"`
}

// Handler exposes Service over HTTP.
//
// Routes:
//
//	GET /api/jobs/live?category=<key>                 → aggregated live jobs
//	GET /api/jobs/remote?position=&company=&limit=    → raw Remote OK records
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger.With("component", "live-handler")}
}

// RegisterRoutes mounts the live routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/jobs/live", httpx.Instrument("/api/jobs/live", http.HandlerFunc(h.handleLive)))
	mux.Handle("GET /api/jobs/remote", httpx.Instrument("/api/jobs/remote", http.HandlerFunc(h.handleRemote)))
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.liveFailed(w, fmt.Errorf("panic: %v", rec))
		}
	}()

	res, err := h.svc.Live(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.liveFailed(w, err)
		return
	}

	metrics.LiveJobsReturned.Observe(float64(len(res.Jobs)))
	httpx.JSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    res.Jobs,
		Total:   len(res.Jobs),
	})
}

// liveFailed logs the cause and answers with the generic error envelope.
func (h *Handler) liveFailed(w http.ResponseWriter, err error) {
	h.logger.Error("live jobs request failed", "err", err)
	httpx.JSON(w, http.StatusInternalServerError, envelope{
		Success: false,
		Error:   "Failed to fetch live jobs",
		Data:    []model.JobListing{},
		Total:   0,
	})
}

func (h *Handler) handleRemote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultRemotePassthroughLimit
	}

	jobs, err := h.svc.Remote(r.Context(), provider.RemoteOKFilters{
		Position: q.Get("position"),
		Company:  q.Get("company"),
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("remote jobs request failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "Failed to fetch remote jobs")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": jobs})
}
