package repository

import (
	"context"
	"fmt"

	"salesops_backend/internal/leads/domain"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
)

// AppendScheduledFollowup adds one entry to the lead's append-only schedule.
// Prior entries are never replaced.
func (r *Repository) AppendScheduledFollowup(ctx context.Context, tx db.DBTX, leadID uuid.UUID, sf domain.ScheduledFollowup) error {
	if sf.ID == uuid.Nil {
		sf.ID = uuid.New()
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO lead_scheduled_followups (id, lead_id, followup_type, scheduled_at, notes, is_done)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sf.ID, leadID, sf.FollowupType, sf.ScheduledAt, sf.Notes, sf.IsDone)
	if err != nil {
		return fmt.Errorf("append scheduled followup: %w", err)
	}
	return nil
}

func (r *Repository) ListScheduledFollowups(ctx context.Context, tx db.DBTX, leadID uuid.UUID) ([]domain.ScheduledFollowup, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, followup_type, scheduled_at, notes, is_done, created_at
		FROM lead_scheduled_followups
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ScheduledFollowup, 0)
	for rows.Next() {
		var sf domain.ScheduledFollowup
		if err := rows.Scan(&sf.ID, &sf.FollowupType, &sf.ScheduledAt, &sf.Notes, &sf.IsDone, &sf.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, sf)
	}
	return items, rows.Err()
}
