package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salesops_backend/internal/leads/domain"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository persists the lead aggregate. It is stateless: every method takes
// the DBTX it runs on, so the same repository serves pool reads and in-tx writes.
type Repository struct{}

func New() *Repository {
	return &Repository{}
}

const leadColumns = `id, lead_ref, lead_number, status, assigned_agent_id,
	customer_name, customer_phone, customer_email, customer_address,
	sales_price_cents, cost_price_cents, total_margin_cents,
	payment_mode, payment_portal, dispute_reason, refund_status,
	order_no, version, created_at, updated_at`

func scanLead(row pgx.Row, lead *domain.Lead) error {
	var status string
	err := row.Scan(
		&lead.ID, &lead.LeadRef, &lead.LeadNumber, &status, &lead.AssignedAgentID,
		&lead.CustomerName, &lead.CustomerPhone, &lead.CustomerEmail, &lead.CustomerAddress,
		&lead.SalesPriceCents, &lead.CostPriceCents, &lead.TotalMarginCents,
		&lead.PaymentMode, &lead.PaymentPortal, &lead.DisputeReason, &lead.RefundStatus,
		&lead.OrderNo, &lead.Version, &lead.CreatedAt, &lead.UpdatedAt,
	)
	lead.Status = domain.Status(status)
	return err
}

func (r *Repository) Create(ctx context.Context, tx db.DBTX, lead *domain.Lead) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO leads (
			id, lead_ref, status, assigned_agent_id,
			customer_name, customer_phone, customer_email, customer_address,
			sales_price_cents, cost_price_cents, total_margin_cents,
			payment_mode, payment_portal, dispute_reason, refund_status, order_no
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING lead_number, version, created_at, updated_at
	`,
		lead.ID, lead.LeadRef, string(lead.Status), lead.AssignedAgentID,
		lead.CustomerName, lead.CustomerPhone, lead.CustomerEmail, lead.CustomerAddress,
		lead.SalesPriceCents, lead.CostPriceCents, lead.TotalMarginCents,
		lead.PaymentMode, lead.PaymentPortal, lead.DisputeReason, lead.RefundStatus, lead.OrderNo,
	).Scan(&lead.LeadNumber, &lead.Version, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}

	if len(lead.Products) > 0 {
		if err := r.ReplaceProducts(ctx, tx, lead.ID, lead.Products); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (domain.Lead, error) {
	var lead domain.Lead
	err := scanLead(tx.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1 AND deleted_at IS NULL
	`, id), &lead)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.Lead{}, err
	}

	products, err := r.ListProducts(ctx, tx, id)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Products = products
	return lead, nil
}

// Save writes all mutable lead fields conditionally on the version the lead
// was loaded with. On success the lead's version is bumped in place.
func (r *Repository) Save(ctx context.Context, tx db.DBTX, lead *domain.Lead) error {
	tag, err := tx.Exec(ctx, `
		UPDATE leads SET
			status = $1, assigned_agent_id = $2,
			customer_name = $3, customer_phone = $4, customer_email = $5, customer_address = $6,
			sales_price_cents = $7, cost_price_cents = $8, total_margin_cents = $9,
			payment_mode = $10, payment_portal = $11, dispute_reason = $12, refund_status = $13,
			order_no = $14, version = version + 1, updated_at = now()
		WHERE id = $15 AND version = $16 AND deleted_at IS NULL
	`,
		string(lead.Status), lead.AssignedAgentID,
		lead.CustomerName, lead.CustomerPhone, lead.CustomerEmail, lead.CustomerAddress,
		lead.SalesPriceCents, lead.CostPriceCents, lead.TotalMarginCents,
		lead.PaymentMode, lead.PaymentPortal, lead.DisputeReason, lead.RefundStatus,
		lead.OrderNo, lead.ID, lead.Version,
	)
	if err != nil {
		return fmt.Errorf("save lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	lead.Version++
	return nil
}

// LeadFilter narrows List results. Zero values mean "no filter".
type LeadFilter struct {
	Status          domain.Status
	AssignedAgentID *uuid.UUID
	Search          string
	Limit           int
	Offset          int
}

func (r *Repository) List(ctx context.Context, tx db.DBTX, filter LeadFilter) ([]domain.Lead, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + leadColumns + ` FROM leads WHERE deleted_at IS NULL`)

	args := make([]any, 0, 4)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.AssignedAgentID != nil {
		args = append(args, *filter.AssignedAgentID)
		fmt.Fprintf(&sb, " AND assigned_agent_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		fmt.Fprintf(&sb, " AND (customer_name ILIKE $%d OR customer_phone ILIKE $%d OR lead_ref ILIKE $%d)",
			len(args), len(args), len(args))
	}

	sb.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := tx.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		var lead domain.Lead
		if err := scanLead(rows, &lead); err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

// SoftDelete marks a lead deleted without touching dependent records.
func (r *Repository) SoftDelete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("lead not found")
	}
	return nil
}
