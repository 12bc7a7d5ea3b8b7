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

// Sale freezes a denormalized snapshot of the lead at the moment payment
// completed. Margin is computed once at creation and never recomputed. The
// secondary fulfillment workflow lives in the confirmation/stage columns.
type Sale struct {
	ID              uuid.UUID
	SaleRef         string
	LeadID          uuid.UUID
	LeadRef         string
	CustomerName    string
	CustomerPhone   string
	PaymentMode     string
	PaymentPortal   string
	SalesPriceCents int64
	CostPriceCents  int64
	MarginCents     int64
	SoldBy          uuid.UUID

	OrderConfirmationSent      bool
	OrderConfirmationSentAt    *time.Time
	Stage                      string
	DeliveryConfirmationSent   bool
	DeliveryConfirmationSentAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CreateParams struct {
	LeadID          uuid.UUID
	LeadRef         string
	CustomerName    string
	CustomerPhone   string
	PaymentMode     string
	PaymentPortal   string
	SalesPriceCents int64
	CostPriceCents  int64
	MarginCents     int64
	SoldBy          uuid.UUID
}

type Repository struct{}

func New() *Repository {
	return &Repository{}
}

const saleColumns = `id, sale_ref, lead_id, lead_ref, customer_name, customer_phone,
	payment_mode, payment_portal, sales_price_cents, cost_price_cents, margin_cents,
	sold_by, order_confirmation_sent, order_confirmation_sent_at, stage,
	delivery_confirmation_sent, delivery_confirmation_sent_at, created_at, updated_at`

func scanSale(row pgx.Row, s *Sale) error {
	return row.Scan(
		&s.ID, &s.SaleRef, &s.LeadID, &s.LeadRef, &s.CustomerName, &s.CustomerPhone,
		&s.PaymentMode, &s.PaymentPortal, &s.SalesPriceCents, &s.CostPriceCents, &s.MarginCents,
		&s.SoldBy, &s.OrderConfirmationSent, &s.OrderConfirmationSentAt, &s.Stage,
		&s.DeliveryConfirmationSent, &s.DeliveryConfirmationSentAt, &s.CreatedAt, &s.UpdatedAt,
	)
}

// CreateIdempotent inserts the sale unless one already exists for the lead.
// The unique index on lead_id makes repeated entry into the paid status safe:
// the second attempt reports created=false and the existing sale's id.
func (r *Repository) CreateIdempotent(ctx context.Context, tx db.DBTX, params CreateParams) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO sales (
			id, sale_ref, lead_id, lead_ref, customer_name, customer_phone,
			payment_mode, payment_portal, sales_price_cents, cost_price_cents,
			margin_cents, sold_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (lead_id) DO NOTHING
		RETURNING id
	`,
		uuid.New(), refgen.NewRef("SA"), params.LeadID, params.LeadRef,
		params.CustomerName, params.CustomerPhone, params.PaymentMode, params.PaymentPortal,
		params.SalesPriceCents, params.CostPriceCents, params.MarginCents, params.SoldBy,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("insert sale: %w", err)
	}

	// Conflict path: resolve the existing sale.
	err = tx.QueryRow(ctx, `SELECT id FROM sales WHERE lead_id = $1`, params.LeadID).Scan(&id)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("resolve existing sale: %w", err)
	}
	return id, false, nil
}

func (r *Repository) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (Sale, error) {
	var s Sale
	err := scanSale(tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, apperr.NotFound("sale not found")
	}
	return s, err
}

func (r *Repository) GetByLeadID(ctx context.Context, tx db.DBTX, leadID uuid.UUID) (Sale, error) {
	var s Sale
	err := scanSale(tx.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE lead_id = $1`, leadID), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, apperr.NotFound("sale not found")
	}
	return s, err
}

func (r *Repository) List(ctx context.Context, tx db.DBTX, limit, offset int) ([]Sale, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := tx.Query(ctx, `
		SELECT `+saleColumns+` FROM sales
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]Sale, 0)
	for rows.Next() {
		var s Sale
		if err := scanSale(rows, &s); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// MarkOrderConfirmationSent stamps the confirmation flag once.
func (r *Repository) MarkOrderConfirmationSent(ctx context.Context, tx db.DBTX, id uuid.UUID) (Sale, error) {
	var s Sale
	err := scanSale(tx.QueryRow(ctx, `
		UPDATE sales SET
			order_confirmation_sent = true,
			order_confirmation_sent_at = COALESCE(order_confirmation_sent_at, now()),
			updated_at = now()
		WHERE id = $1
		RETURNING `+saleColumns+`
	`, id), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, apperr.NotFound("sale not found")
	}
	return s, err
}

func (r *Repository) UpdateStage(ctx context.Context, tx db.DBTX, id uuid.UUID, stage string) (Sale, error) {
	var s Sale
	err := scanSale(tx.QueryRow(ctx, `
		UPDATE sales SET stage = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+saleColumns+`
	`, id, stage), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, apperr.NotFound("sale not found")
	}
	return s, err
}

// MarkDeliveryConfirmationSent stamps the delivery confirmation flag once.
func (r *Repository) MarkDeliveryConfirmationSent(ctx context.Context, tx db.DBTX, id uuid.UUID) (Sale, error) {
	var s Sale
	err := scanSale(tx.QueryRow(ctx, `
		UPDATE sales SET
			delivery_confirmation_sent = true,
			delivery_confirmation_sent_at = COALESCE(delivery_confirmation_sent_at, now()),
			updated_at = now()
		WHERE id = $1
		RETURNING `+saleColumns+`
	`, id), &s)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, apperr.NotFound("sale not found")
	}
	return s, err
}
