package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Target is a sales goal over a date window. An empty AssignedUserIDs slice
// means the target counts every agent's sales. A switched-off target keeps
// its accumulated amount but stops counting new sales.
type Target struct {
	ID                  uuid.UUID
	Name                string
	PeriodStart         time.Time
	PeriodEnd           time.Time
	GoalAmountCents     int64
	AchievedAmountCents int64
	AssignedUserIDs     []uuid.UUID
	IsActive            bool
	CreatedBy           uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateParams for a new target.
type CreateParams struct {
	Name            string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	GoalAmountCents int64
	AssignedUserIDs []uuid.UUID
	IsActive        bool
	CreatedBy       uuid.UUID
}

type Repository struct{}

func New() *Repository {
	return &Repository{}
}

const targetColumns = `id, name, period_start, period_end, goal_amount_cents,
	achieved_amount_cents, assigned_user_ids, is_active, created_by, created_at, updated_at`

func scanTarget(row pgx.Row, t *Target) error {
	return row.Scan(
		&t.ID, &t.Name, &t.PeriodStart, &t.PeriodEnd, &t.GoalAmountCents,
		&t.AchievedAmountCents, &t.AssignedUserIDs, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
}

func (r *Repository) Create(ctx context.Context, tx db.DBTX, params CreateParams) (Target, error) {
	var t Target
	err := scanTarget(tx.QueryRow(ctx, `
		INSERT INTO targets (id, name, period_start, period_end, goal_amount_cents, assigned_user_ids, is_active, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+targetColumns+`
	`, uuid.New(), params.Name, params.PeriodStart, params.PeriodEnd,
		params.GoalAmountCents, params.AssignedUserIDs, params.IsActive, params.CreatedBy), &t)
	if err != nil {
		return Target{}, fmt.Errorf("create target: %w", err)
	}
	return t, nil
}

func (r *Repository) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (Target, error) {
	var t Target
	err := scanTarget(tx.QueryRow(ctx, `
		SELECT `+targetColumns+` FROM targets WHERE id = $1
	`, id), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return Target{}, apperr.NotFound("target not found")
	}
	return t, err
}

// ListActiveAt returns switched-on targets whose window contains the given
// instant. Agent matching happens in the service against the assigned set.
func (r *Repository) ListActiveAt(ctx context.Context, tx db.DBTX, at time.Time) ([]Target, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+targetColumns+` FROM targets
		WHERE is_active AND period_start <= $1 AND period_end >= $1
		ORDER BY period_start ASC
	`, at)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTargets(rows)
}

func (r *Repository) List(ctx context.Context, tx db.DBTX, limit, offset int) ([]Target, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := tx.Query(ctx, `
		SELECT `+targetColumns+` FROM targets
		ORDER BY period_start DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTargets(rows)
}

func collectTargets(rows pgx.Rows) ([]Target, error) {
	targets := make([]Target, 0)
	for rows.Next() {
		var t Target
		if err := scanTarget(rows, &t); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// Increment adds the amount to the target's achieved counter atomically and
// returns the counter before and after, so callers can detect a goal
// crossing without a read-modify-write race.
func (r *Repository) Increment(ctx context.Context, tx db.DBTX, id uuid.UUID, amountCents int64) (before, after int64, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE targets SET
			achieved_amount_cents = achieved_amount_cents + $2,
			updated_at = now()
		WHERE id = $1
		RETURNING achieved_amount_cents - $2, achieved_amount_cents
	`, id, amountCents).Scan(&before, &after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, apperr.NotFound("target not found")
	}
	if err != nil {
		return 0, 0, fmt.Errorf("increment target: %w", err)
	}
	return before, after, nil
}

// Update patches the target's editable fields.
func (r *Repository) Update(ctx context.Context, tx db.DBTX, id uuid.UUID, params CreateParams) (Target, error) {
	var t Target
	err := scanTarget(tx.QueryRow(ctx, `
		UPDATE targets SET
			name = $2, period_start = $3, period_end = $4,
			goal_amount_cents = $5, assigned_user_ids = $6, is_active = $7,
			updated_at = now()
		WHERE id = $1
		RETURNING `+targetColumns+`
	`, id, params.Name, params.PeriodStart, params.PeriodEnd,
		params.GoalAmountCents, params.AssignedUserIDs, params.IsActive), &t)
	if errors.Is(err, pgx.ErrNoRows) {
		return Target{}, apperr.NotFound("target not found")
	}
	return t, err
}

func (r *Repository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM targets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("target not found")
	}
	return nil
}
