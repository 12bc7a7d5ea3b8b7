package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"salesops_backend/internal/leads/domain"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
)

// AppendHistory adds one entry to the lead's append-only local audit trail.
func (r *Repository) AppendHistory(ctx context.Context, tx db.DBTX, leadID uuid.UUID, entry domain.HistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	var diff []byte
	if entry.Diff != nil {
		var err error
		diff, err = json.Marshal(entry.Diff)
		if err != nil {
			return fmt.Errorf("marshal history diff: %w", err)
		}
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO lead_history (id, lead_id, action, diff, actor_id, note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ID, leadID, entry.Action, diff, entry.ActorID, entry.Note)
	if err != nil {
		return fmt.Errorf("append lead history: %w", err)
	}
	return nil
}

func (r *Repository) ListHistory(ctx context.Context, tx db.DBTX, leadID uuid.UUID) ([]domain.HistoryEntry, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, action, COALESCE(diff, 'null'::jsonb), actor_id, note, created_at
		FROM lead_history
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var entry domain.HistoryEntry
		var diff []byte
		if err := rows.Scan(&entry.ID, &entry.Action, &diff, &entry.ActorID, &entry.Note, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if len(diff) > 0 {
			if err := json.Unmarshal(diff, &entry.Diff); err != nil {
				return nil, fmt.Errorf("unmarshal history diff: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
