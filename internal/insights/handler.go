// Package insights HTTP layer.
//
// Routes:
//
//	GET /api/insights?what=&where=&country=&summary=true|false
package insights

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/billo-w/job-app-v2/internal/model"
)

// Handler exposes the aggregator over HTTP.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the insights routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/insights", h.handleInsights)
}

func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	q := model.Query{
		What:    params.Get("what"),
		Where:   params.Get("where"),
		Country: params.Get("country"),
	}
	wantSummary := params.Get("summary") == "true"

	report, err := h.svc.GetInsights(r.Context(), q, wantSummary)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			jsonError(w, ve.Msg, http.StatusBadRequest)
		case errors.Is(err, ErrUpstreamUnavailable):
			// No transport detail leaks; the client shows a generic retry message.
			jsonError(w, "job search is temporarily unavailable, please try again", http.StatusBadGateway)
		default:
			h.logger.Error("get insights failed", "err", err)
			jsonError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	jsonOK(w, report)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
