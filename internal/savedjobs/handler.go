// Package savedjobs HTTP layer.
//
// All routes expect an x-user-id header forwarded by the gateway.
//
// Routes:
//
//	POST /api/saved-jobs/save    → save a listing (idempotent)
//	POST /api/saved-jobs/unsave  → remove a saved listing (idempotent)
//	GET  /api/saved-jobs         → list user's saved jobs, newest first
//	GET  /api/saved-jobs/ids     → set of saved provider job IDs
package savedjobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/billo-w/job-app-v2/internal/model"
)

// Toggler is the service contract the handler depends on.
type Toggler interface {
	Save(ctx context.Context, userID string, in SaveInput) error
	Unsave(ctx context.Context, userID, providerJobID string) error
	List(ctx context.Context, userID string) ([]model.SavedJob, error)
	SavedIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// Handler exposes the toggle protocol over HTTP.
type Handler struct {
	svc    Toggler
	logger *slog.Logger
}

// NewHandler returns a configured Handler.
func NewHandler(svc Toggler, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts all saved-jobs routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/saved-jobs", h.handleList)
	mux.HandleFunc("/api/saved-jobs/ids", h.handleSavedIDs)
	mux.HandleFunc("/api/saved-jobs/save", h.handleSave)
	mux.HandleFunc("/api/saved-jobs/unsave", h.handleUnsave)
}

// saveRequest is the JSON body of a save toggle. Unsave only needs the ID.
type saveRequest struct {
	ProviderJobID string `json:"providerJobId"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	Location      string `json:"location"`
	SourceURL     string `json:"sourceUrl"`
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := identity(w, r)
	if !ok {
		return
	}

	var body saveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	err := h.svc.Save(r.Context(), userID, SaveInput{
		ProviderJobID: body.ProviderJobID,
		Title:         body.Title,
		Company:       body.Company,
		Location:      body.Location,
		SourceURL:     body.SourceURL,
	})
	if err != nil {
		h.writeError(w, "save", err)
		return
	}

	jsonOK(w, map[string]string{"status": "saved"})
}

func (h *Handler) handleUnsave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := identity(w, r)
	if !ok {
		return
	}

	var body saveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.svc.Unsave(r.Context(), userID, body.ProviderJobID); err != nil {
		h.writeError(w, "unsave", err)
		return
	}

	jsonOK(w, map[string]string{"status": "unsaved"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := identity(w, r)
	if !ok {
		return
	}

	jobs, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, "list", err)
		return
	}

	jsonOK(w, jobs)
}

func (h *Handler) handleSavedIDs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := identity(w, r)
	if !ok {
		return
	}

	ids, err := h.svc.SavedIDs(r.Context(), userID)
	if err != nil {
		h.writeError(w, "saved ids", err)
		return
	}

	// Return a stable array shape rather than a JSON object keyed by ID.
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	jsonOK(w, map[string][]string{"savedJobIds": out})
}

// identity extracts the verified user identity forwarded by the gateway.
// Writes 401 and returns ok=false when it is absent.
func identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		jsonError(w, ve.Msg, http.StatusBadRequest)
		return
	}
	h.logger.Error("saved jobs operation failed", "op", op, "err", err)
	jsonError(w, "database error", http.StatusInternalServerError)
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
