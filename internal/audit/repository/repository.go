package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"salesops_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Entry is a single append-only audit row. Before and After hold JSON
// snapshots of the record around the change; Before is null for creations.
type Entry struct {
	ID        uuid.UUID
	ActorID   uuid.UUID
	ActorName string
	Action    string
	Module    string
	TargetID  string
	Before    json.RawMessage
	After     json.RawMessage
	CreatedAt time.Time
}

// AppendParams for a new audit entry. Before and After may be any
// JSON-serializable value or nil.
type AppendParams struct {
	ActorID   uuid.UUID
	ActorName string
	Action    string
	Module    string
	TargetID  string
	Before    any
	After     any
}

type Repository struct{}

func New() *Repository {
	return &Repository{}
}

func (r *Repository) Append(ctx context.Context, tx db.DBTX, params AppendParams) error {
	before, err := marshalSnapshot(params.Before)
	if err != nil {
		return fmt.Errorf("marshal audit before: %w", err)
	}
	after, err := marshalSnapshot(params.After)
	if err != nil {
		return fmt.Errorf("marshal audit after: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO audit_log (id, actor_id, actor_name, action, module, target_id, before, after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.New(), params.ActorID, params.ActorName, params.Action, params.Module, params.TargetID, before, after)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// ListFilter narrows the audit listing.
type ListFilter struct {
	Module   string
	TargetID string
	ActorID  *uuid.UUID
	Limit    int
	Offset   int
}

func (r *Repository) List(ctx context.Context, tx db.DBTX, filter ListFilter) ([]Entry, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	rows, err := tx.Query(ctx, `
		SELECT id, actor_id, actor_name, action, module, target_id,
			COALESCE(before, 'null'::jsonb), COALESCE(after, 'null'::jsonb), created_at
		FROM audit_log
		WHERE ($1 = '' OR module = $1)
		  AND ($2 = '' OR target_id = $2)
		  AND ($3::uuid IS NULL OR actor_id = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, filter.Module, filter.TargetID, filter.ActorID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := scanEntry(rows, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row, e *Entry) error {
	return row.Scan(
		&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.Module, &e.TargetID,
		&e.Before, &e.After, &e.CreatedAt,
	)
}
