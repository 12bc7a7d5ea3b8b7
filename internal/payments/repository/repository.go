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

// PaymentRecord is the at-most-one-per-lead payment aggregate, keyed by
// lead_id. Vendor fields are a denormalized copy from the lead's first
// product at the time of the last qualifying update.
type PaymentRecord struct {
	ID              uuid.UUID
	PaymentRef      string
	LeadID          uuid.UUID
	PaymentStatus   string
	SalesPriceCents int64
	PaymentMode     string
	PaymentPortal   string
	DisputeReason   string
	RefundStatus    string

	VendorShopName    string
	VendorPaymentMode string
	VendorPriceCents  int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertParams carries payload values (pointers, nil = not supplied) and the
// lead's current values as the final fallback. Precedence on a hit is payload
// first, then the existing record, then the lead.
type UpsertParams struct {
	LeadID uuid.UUID

	SalesPriceCents *int64
	PaymentMode     *string
	PaymentPortal   *string
	DisputeReason   *string
	RefundStatus    *string

	LeadSalesPriceCents int64
	LeadPaymentMode     string
	LeadPaymentPortal   string

	VendorShopName    string
	VendorPaymentMode string
	VendorPriceCents  int64
}

type Repository struct{}

func New() *Repository {
	return &Repository{}
}

const paymentColumns = `id, payment_ref, lead_id, payment_status, sales_price_cents,
	payment_mode, payment_portal, dispute_reason, refund_status,
	vendor_shop_name, vendor_payment_mode, vendor_price_cents, created_at, updated_at`

func scanPayment(row pgx.Row, p *PaymentRecord) error {
	return row.Scan(
		&p.ID, &p.PaymentRef, &p.LeadID, &p.PaymentStatus, &p.SalesPriceCents,
		&p.PaymentMode, &p.PaymentPortal, &p.DisputeReason, &p.RefundStatus,
		&p.VendorShopName, &p.VendorPaymentMode, &p.VendorPriceCents, &p.CreatedAt, &p.UpdatedAt,
	)
}

// Upsert creates or refreshes the lead's payment record in a single
// statement, so the path stays one lookup plus one write no matter how often
// it runs. Empty strings and zero amounts on the existing row count as
// absent, which is what NULLIF buys here.
func (r *Repository) Upsert(ctx context.Context, tx db.DBTX, params UpsertParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `
		INSERT INTO payment_records (
			id, payment_ref, lead_id, payment_status, sales_price_cents,
			payment_mode, payment_portal, dispute_reason, refund_status,
			vendor_shop_name, vendor_payment_mode, vendor_price_cents
		) VALUES (
			$1, $2, $3, 'pending',
			COALESCE($4, $5),
			COALESCE($6, $7), COALESCE($8, $9),
			COALESCE($10, ''), COALESCE($11, ''),
			$12, $13, $14
		)
		ON CONFLICT (lead_id) DO UPDATE SET
			sales_price_cents = COALESCE($4, NULLIF(payment_records.sales_price_cents, 0), $5),
			payment_mode = COALESCE($6, NULLIF(payment_records.payment_mode, ''), $7),
			payment_portal = COALESCE($8, NULLIF(payment_records.payment_portal, ''), $9),
			dispute_reason = COALESCE($10, payment_records.dispute_reason),
			refund_status = COALESCE($11, payment_records.refund_status),
			vendor_shop_name = $12,
			vendor_payment_mode = $13,
			vendor_price_cents = $14,
			updated_at = now()
		RETURNING id
	`,
		uuid.New(), refgen.NewRef("PY"), params.LeadID,
		params.SalesPriceCents, params.LeadSalesPriceCents,
		params.PaymentMode, params.LeadPaymentMode,
		params.PaymentPortal, params.LeadPaymentPortal,
		params.DisputeReason, params.RefundStatus,
		params.VendorShopName, params.VendorPaymentMode, params.VendorPriceCents,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upsert payment record: %w", err)
	}
	return id, nil
}

func (r *Repository) GetByLeadID(ctx context.Context, tx db.DBTX, leadID uuid.UUID) (PaymentRecord, error) {
	var p PaymentRecord
	err := scanPayment(tx.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payment_records WHERE lead_id = $1
	`, leadID), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaymentRecord{}, apperr.NotFound("payment record not found")
	}
	return p, err
}

func (r *Repository) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (PaymentRecord, error) {
	var p PaymentRecord
	err := scanPayment(tx.QueryRow(ctx, `
		SELECT `+paymentColumns+` FROM payment_records WHERE id = $1
	`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaymentRecord{}, apperr.NotFound("payment record not found")
	}
	return p, err
}

// UpdateDispute patches the dispute and refund fields plus payment status.
func (r *Repository) UpdateDispute(ctx context.Context, tx db.DBTX, id uuid.UUID, status, disputeReason, refundStatus *string) (PaymentRecord, error) {
	var p PaymentRecord
	err := scanPayment(tx.QueryRow(ctx, `
		UPDATE payment_records SET
			payment_status = COALESCE($2, payment_status),
			dispute_reason = COALESCE($3, dispute_reason),
			refund_status = COALESCE($4, refund_status),
			updated_at = now()
		WHERE id = $1
		RETURNING `+paymentColumns+`
	`, id, status, disputeReason, refundStatus), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaymentRecord{}, apperr.NotFound("payment record not found")
	}
	return p, err
}

func (r *Repository) List(ctx context.Context, tx db.DBTX, limit, offset int) ([]PaymentRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := tx.Query(ctx, `
		SELECT `+paymentColumns+` FROM payment_records
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PaymentRecord, 0)
	for rows.Next() {
		var p PaymentRecord
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		records = append(records, p)
	}
	return records, rows.Err()
}
