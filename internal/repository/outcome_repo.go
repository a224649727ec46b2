package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"mailtriage/internal/model"
	"mailtriage/internal/service"
	"mailtriage/pkg/trace"
)

// DBTX is the subset of *pgxpool.Pool the repository uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
        CREATE TABLE IF NOT EXISTS triage_outcomes (
            id          TEXT PRIMARY KEY,
            sender      TEXT NOT NULL,
            success     BOOLEAN NOT NULL,
            category    TEXT,
            response    TEXT,
            stage       TEXT,
            error       TEXT,
            trace_id    TEXT,
            created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )
    `

// StoredOutcome is one row of triage_outcomes.
type StoredOutcome struct {
	model.Outcome
	Stage     string
	ErrorText string
	TraceID   string
	CreatedAt time.Time
}

type OutcomeRepository struct {
	db DBTX
}

func NewOutcomeRepository(db DBTX) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// EnsureSchema creates triage_outcomes when missing.
func (r *OutcomeRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create triage_outcomes: %w", err)
	}
	return nil
}

// Save stores the outcome. A later run of the same email id replaces the
// earlier row.
func (r *OutcomeRepository) Save(ctx context.Context, o model.Outcome) error {
	query := `
        INSERT INTO triage_outcomes (id, sender, success, category, response, stage, error, trace_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        ON CONFLICT (id) DO UPDATE SET
            sender     = EXCLUDED.sender,
            success    = EXCLUDED.success,
            category   = EXCLUDED.category,
            response   = EXCLUDED.response,
            stage      = EXCLUDED.stage,
            error      = EXCLUDED.error,
            trace_id   = EXCLUDED.trace_id,
            created_at = EXCLUDED.created_at
    `
	var errText, stage *string
	if o.Err != nil {
		s := o.Err.Error()
		errText = &s
		st := service.FailedStage(o.Err)
		stage = &st
	}

	_, err := r.db.Exec(ctx, query,
		o.ID,
		o.Sender,
		o.Success,
		nullable(string(o.Category)),
		nullable(o.Response),
		stage,
		errText,
		nullable(trace.FromContext(ctx)),
	)
	if err != nil {
		return fmt.Errorf("insert outcome %s: %w", o.ID, err)
	}
	return nil
}

// Exists reports whether an outcome for id was already stored.
func (r *OutcomeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM triage_outcomes WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// FindByID returns the stored outcome, or pgx.ErrNoRows.
func (r *OutcomeRepository) FindByID(ctx context.Context, id string) (*StoredOutcome, error) {
	query := `
        SELECT id, sender, success, category, response, stage, error, trace_id, created_at
        FROM triage_outcomes
        WHERE id = $1
    `
	var s StoredOutcome
	var category, response, stage, errText, tid *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Sender,
		&s.Success,
		&category,
		&response,
		&stage,
		&errText,
		&tid,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find outcome %s: %w", id, err)
	}

	s.Category = model.Category(deref(category))
	s.Response = deref(response)
	s.Stage = deref(stage)
	s.ErrorText = deref(errText)
	s.TraceID = deref(tid)
	return &s, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
