package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"
	"salesops_backend/platform/refgen"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Followup is an independent record opened when a lead enters a follow-up
// status. It carries a denormalized lead snapshot frozen at creation time and
// its own completion lifecycle. Follow-ups are never deleted.
type Followup struct {
	ID              uuid.UUID
	FollowupRef     string
	LeadID          uuid.UUID
	LeadRef         string
	LeadNumber      int64
	CustomerName    string
	CustomerPhone   string
	ProductName     string
	SalesPriceCents int64
	FollowupType    string
	ScheduledAt     *time.Time
	AssignedTo      *uuid.UUID
	IsDone          bool
	CompletedBy     *uuid.UUID
	CompletedAt     *time.Time
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CreateParams struct {
	LeadID          uuid.UUID
	LeadRef         string
	LeadNumber      int64
	CustomerName    string
	CustomerPhone   string
	ProductName     string
	SalesPriceCents int64
	FollowupType    string
	ScheduledAt     *time.Time
	AssignedTo      *uuid.UUID
}

type Repository struct{}

func New() *Repository {
	return &Repository{}
}

const followupColumns = `id, followup_ref, lead_id, lead_ref, lead_number,
	customer_name, customer_phone, product_name, sales_price_cents,
	followup_type, scheduled_at, assigned_to, is_done, completed_by,
	completed_at, notes, created_at, updated_at`

func scanFollowup(row pgx.Row, fu *Followup) error {
	return row.Scan(
		&fu.ID, &fu.FollowupRef, &fu.LeadID, &fu.LeadRef, &fu.LeadNumber,
		&fu.CustomerName, &fu.CustomerPhone, &fu.ProductName, &fu.SalesPriceCents,
		&fu.FollowupType, &fu.ScheduledAt, &fu.AssignedTo, &fu.IsDone, &fu.CompletedBy,
		&fu.CompletedAt, &fu.Notes, &fu.CreatedAt, &fu.UpdatedAt,
	)
}

func (r *Repository) Create(ctx context.Context, tx db.DBTX, params CreateParams) (Followup, error) {
	var fu Followup
	err := scanFollowup(tx.QueryRow(ctx, `
		INSERT INTO followups (
			id, followup_ref, lead_id, lead_ref, lead_number,
			customer_name, customer_phone, product_name, sales_price_cents,
			followup_type, scheduled_at, assigned_to
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+followupColumns+`
	`,
		uuid.New(), refgen.NewRef("FU"), params.LeadID, params.LeadRef, params.LeadNumber,
		params.CustomerName, params.CustomerPhone, params.ProductName, params.SalesPriceCents,
		params.FollowupType, params.ScheduledAt, params.AssignedTo,
	), &fu)
	if err != nil {
		return Followup{}, fmt.Errorf("insert followup: %w", err)
	}
	return fu, nil
}

func (r *Repository) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (Followup, error) {
	var fu Followup
	err := scanFollowup(tx.QueryRow(ctx, `
		SELECT `+followupColumns+` FROM followups WHERE id = $1
	`, id), &fu)
	if errors.Is(err, pgx.ErrNoRows) {
		return Followup{}, apperr.NotFound("follow-up not found")
	}
	if err != nil {
		return Followup{}, err
	}
	return fu, nil
}

// MarkDone stamps completion metadata and appends notes to any existing ones.
func (r *Repository) MarkDone(ctx context.Context, tx db.DBTX, id uuid.UUID, completedBy uuid.UUID, notes string) (Followup, error) {
	var fu Followup
	err := scanFollowup(tx.QueryRow(ctx, `
		UPDATE followups SET
			is_done = true,
			completed_by = $2,
			completed_at = now(),
			notes = CASE
				WHEN $3 = '' THEN notes
				WHEN notes = '' THEN $3
				ELSE notes || E'\n' || $3
			END,
			updated_at = now()
		WHERE id = $1
		RETURNING `+followupColumns+`
	`, id, completedBy, notes), &fu)
	if errors.Is(err, pgx.ErrNoRows) {
		return Followup{}, apperr.NotFound("follow-up not found")
	}
	if err != nil {
		return Followup{}, err
	}
	return fu, nil
}

// ListFilter narrows the follow-up work queue.
type ListFilter struct {
	LeadID      *uuid.UUID
	AssignedTo  *uuid.UUID
	PendingOnly bool
	Limit       int
}

func (r *Repository) List(ctx context.Context, tx db.DBTX, filter ListFilter) ([]Followup, error) {
	query := `SELECT ` + followupColumns + ` FROM followups WHERE 1=1`
	args := make([]any, 0, 3)
	if filter.LeadID != nil {
		args = append(args, *filter.LeadID)
		query += fmt.Sprintf(" AND lead_id = $%d", len(args))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		query += fmt.Sprintf(" AND assigned_to = $%d", len(args))
	}
	if filter.PendingOnly {
		query += " AND is_done = false"
	}
	query += " ORDER BY scheduled_at ASC NULLS LAST, created_at ASC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Followup, 0)
	for rows.Next() {
		var fu Followup
		if err := scanFollowup(rows, &fu); err != nil {
			return nil, err
		}
		items = append(items, fu)
	}
	return items, rows.Err()
}

// ListDueBefore returns pending follow-ups whose scheduled time has passed,
// for the reminder worker.
func (r *Repository) ListDueBefore(ctx context.Context, tx db.DBTX, cutoff time.Time, limit int) ([]Followup, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := tx.Query(ctx, `
		SELECT `+followupColumns+`
		FROM followups
		WHERE is_done = false AND scheduled_at IS NOT NULL AND scheduled_at <= $1
		ORDER BY scheduled_at ASC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Followup, 0)
	for rows.Next() {
		var fu Followup
		if err := scanFollowup(rows, &fu); err != nil {
			return nil, err
		}
		items = append(items, fu)
	}
	return items, rows.Err()
}
