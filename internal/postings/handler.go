package postings

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"kaamkhoj/jobboard/internal/httpx"
	"kaamkhoj/jobboard/internal/model"
)

// Handler exposes Service over HTTP.
//
// Routes:
//
//	GET    /api/jobs         → active postings (filters: q, location, category, salaryMin, jobTypes, experienceLevels)
//	GET    /api/jobs/{id}    → single posting
//	POST   /api/jobs         → create (admin)
//	PUT    /api/jobs/{id}    → update (admin)
//	DELETE /api/jobs/{id}    → delete (admin)
type Handler struct {
	svc    *Service
	admin  func(http.Handler) http.Handler
	logger *slog.Logger
}

// NewHandler returns a Handler. admin wraps the mutating routes.
func NewHandler(svc *Service, admin func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, admin: admin, logger: logger.With("component", "postings-handler")}
}

// RegisterRoutes mounts the posting routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/jobs", httpx.Instrument("/api/jobs", http.HandlerFunc(h.list)))
	mux.Handle("GET /api/jobs/{id}", httpx.Instrument("/api/jobs/{id}", http.HandlerFunc(h.get)))
	mux.Handle("POST /api/jobs", httpx.Instrument("/api/jobs", h.admin(http.HandlerFunc(h.create))))
	mux.Handle("PUT /api/jobs/{id}", httpx.Instrument("/api/jobs/{id}", h.admin(http.HandlerFunc(h.update))))
	mux.Handle("DELETE /api/jobs/{id}", httpx.Instrument("/api/jobs/{id}", h.admin(http.HandlerFunc(h.delete))))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.List(r.Context(), ParseFilter(r))
	if err != nil {
		h.logger.Error("list postings failed", "err", err)
		httpx.JSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Failed to fetch jobs",
			"data":    []model.Posting{},
			"total":   0,
		})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": jobs, "total": len(jobs)})
}

// ParseFilter reads the listing filters from the query string.
func ParseFilter(r *http.Request) model.PostingFilter {
	q := r.URL.Query()
	salaryMin, _ := strconv.Atoi(q.Get("salaryMin"))
	return model.PostingFilter{
		Query:            q.Get("q"),
		Location:         q.Get("location"),
		Category:         q.Get("category"),
		SalaryMin:        salaryMin,
		JobTypes:         splitList(q.Get("jobTypes")),
		ExperienceLevels: splitList(q.Get("experienceLevels")),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, "get posting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": p})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.writeErr(w, "create posting", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": p})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := h.svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.writeErr(w, "update posting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "data": p})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeErr(w, "delete posting", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Job deleted successfully"})
}

// writeErr maps service errors to status codes.
func (h *Handler) writeErr(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Job not found")
	case errors.As(err, &verr):
		httpx.Error(w, http.StatusBadRequest, verr.Msg)
	default:
		h.logger.Error(op+" failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "database error")
	}
}
