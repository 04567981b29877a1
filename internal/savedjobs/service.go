// Package savedjobs maintains the per-user saved-job relation and its
// idempotent save/unsave toggle protocol.
package savedjobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/billo-w/job-app-v2/internal/model"
)

// Toggle events published to Redis for gateway SSE forwarding. Publishing is
// best-effort: a no-op toggle publishes nothing and a publish failure never
// fails the request.
const (
	EventJobSaved   = "EVENT_JOB_SAVED"
	EventJobUnsaved = "EVENT_JOB_UNSAVED"
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// SaveInput carries the descriptive fields copied onto a new saved record.
type SaveInput struct {
	ProviderJobID string
	Title         string
	Company       string
	Location      string
	SourceURL     string
}

// Store is the subset of pgxpool.Pool the service needs. Narrowed so tests
// can substitute pgxmock.
type Store interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Service encapsulates the saved-job business logic. Ownership is part of
// every lookup key — user_id appears in each statement, never as a post-hoc
// check.
type Service struct {
	store  Store
	rdb    *redis.Client
	logger *slog.Logger
}

// NewService returns a configured Service. rdb may be nil (events disabled).
func NewService(store Store, rdb *redis.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, rdb: rdb, logger: logger}
}

// Save records the listing for userID. Saving an already-saved job is a
// no-op success; the unique constraint on (user_id, provider_job_id) makes
// concurrent duplicate saves collapse to a single record with no
// application-level locking.
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) error {
	if userID == "" {
		return &ValidationError{Msg: "user identity is required"}
	}
	if in.ProviderJobID == "" {
		return &ValidationError{Msg: "providerJobId is required"}
	}

	tag, err := s.store.Exec(ctx,
		`INSERT INTO saved_jobs (user_id, provider_job_id, title, company, location, source_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, provider_job_id) DO NOTHING`,
		userID, in.ProviderJobID, in.Title, in.Company, in.Location, in.SourceURL,
	)
	if err != nil {
		return fmt.Errorf("save job insert: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Already saved (possibly by a racing request) — idempotent success.
		return nil
	}

	s.publish(ctx, EventJobSaved, userID, in.ProviderJobID)
	return nil
}

// Unsave removes the record owned by userID for providerJobID. Removing
// something already absent is a success, not an error.
func (s *Service) Unsave(ctx context.Context, userID, providerJobID string) error {
	if userID == "" {
		return &ValidationError{Msg: "user identity is required"}
	}
	if providerJobID == "" {
		return &ValidationError{Msg: "providerJobId is required"}
	}

	tag, err := s.store.Exec(ctx,
		`DELETE FROM saved_jobs WHERE user_id = $1 AND provider_job_id = $2`,
		userID, providerJobID,
	)
	if err != nil {
		return fmt.Errorf("unsave job delete: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil // already gone — idempotent success
	}

	s.publish(ctx, EventJobUnsaved, userID, providerJobID)
	return nil
}

// List returns the user's saved jobs, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]model.SavedJob, error) {
	rows, err := s.store.Query(ctx,
		`SELECT id, user_id, provider_job_id, title, company, location, source_url, saved_at
		 FROM saved_jobs
		 WHERE user_id = $1
		 ORDER BY saved_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list saved jobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.SavedJob, 0)
	for rows.Next() {
		var j model.SavedJob
		if err := rows.Scan(
			&j.ID, &j.UserID, &j.ProviderJobID, &j.Title,
			&j.Company, &j.Location, &j.SourceURL, &j.SavedAt,
		); err != nil {
			return nil, fmt.Errorf("list saved jobs scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// SavedIDs returns the set of provider job IDs saved by userID. The
// presentation layer uses it to mark listings as already saved.
func (s *Service) SavedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.store.Query(ctx,
		`SELECT provider_job_id FROM saved_jobs WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("saved ids query: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("saved ids scan: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (s *Service) publish(ctx context.Context, eventType, userID, providerJobID string) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":          eventType,
		"userId":        userID,
		"providerJobId": providerJobID,
	})
	if err := s.rdb.Publish(ctx, eventType, event).Err(); err != nil {
		s.logger.Warn("publish toggle event failed", "event", eventType, "err", err)
	}
}
