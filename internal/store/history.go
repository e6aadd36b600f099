// internal/store/history.go
package store

import (
	"context"
	"database/sql"
	"time"

	stderrors "adgen-orchestrator/internal/common/errors"
	"adgen-orchestrator/internal/jobs"

	"github.com/google/uuid"
)

// HistoryEntry is one terminal job recorded for audit and usage review.
type HistoryEntry struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	Kind        jobs.Kind `json:"kind"`
	Status      string    `json:"status"`
	ImageCount  int       `json:"imageCount"`
	CreditsUsed int       `json:"creditsUsed"`
	SubmittedAt time.Time `json:"submittedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
}

// HistoryStore persists terminal jobs to Postgres.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS job_history (
	id           TEXT PRIMARY KEY,
	job_id       TEXT NOT NULL,
	kind         TEXT NOT NULL,
	status       TEXT NOT NULL,
	image_count  INTEGER NOT NULL DEFAULT 0,
	credits_used INTEGER NOT NULL DEFAULT 0,
	submitted_at TIMESTAMPTZ NOT NULL,
	finished_at  TIMESTAMPTZ NOT NULL
)`

// EnsureSchema creates the history table if it does not exist.
func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return stderrors.NewHistoryWriteFailedError(err)
	}
	return nil
}

// Record inserts one terminal job. A missing row ID is generated.
func (s *HistoryStore) Record(ctx context.Context, entry *HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO job_history (id, job_id, kind, status, image_count, credits_used, submitted_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.JobID, string(entry.Kind), entry.Status,
		entry.ImageCount, entry.CreditsUsed, entry.SubmittedAt, entry.FinishedAt,
	)
	if err != nil {
		return stderrors.NewHistoryWriteFailedError(err)
	}
	return nil
}

// Recent returns the most recently finished jobs, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_id, kind, status, image_count, credits_used, submitted_at, finished_at
		 FROM job_history ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.JobID, &kind, &e.Status,
			&e.ImageCount, &e.CreditsUsed, &e.SubmittedAt, &e.FinishedAt); err != nil {
			return nil, err
		}
		e.Kind = jobs.Kind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
