package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
)

// Entry is one dispatched mutation as seen by this service.
type Entry struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"requestId"`
	Transition string    `json:"transition"`
	EntityCode string    `json:"entityCode"`
	AccountID  int64     `json:"accountId"`
	Role       int       `json:"role"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	Metadata   any       `json:"metadata,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Nop discards entries; used when no database is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Record(ctx context.Context, e Entry) error {
	var s *string
	if e.Metadata != nil {
		b, _ := json.Marshal(e.Metadata)
		str := string(b)
		s = &str
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	const q = `
INSERT INTO mutation_audit (request_id, transition, entity_code, account_id, role, outcome, error, metadata, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), CAST($8 AS jsonb), $9)
`
	_, err := r.db.Exec(ctx, q, e.RequestID, e.Transition, e.EntityCode, e.AccountID, e.Role, e.Outcome, e.Error, s, e.OccurredAt)
	return err
}

func (r *Repository) ListByCode(ctx context.Context, code string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT id, request_id, transition, entity_code, account_id, role, outcome, COALESCE(error, ''), COALESCE(metadata, '{}'::jsonb), occurred_at
FROM mutation_audit
WHERE entity_code = $1
ORDER BY occurred_at DESC, id DESC
LIMIT $2
`
	rows, err := r.db.Query(ctx, q, code, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Transition, &e.EntityCode, &e.AccountID, &e.Role, &e.Outcome, &e.Error, &e.Metadata, &e.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
