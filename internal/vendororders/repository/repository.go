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

// VendorOrder is a purchase order against an external vendor, keyed by
// (customer_id, product_name) so repeated saves of the same lead refresh the
// existing order instead of stacking duplicates.
type VendorOrder struct {
	ID          uuid.UUID
	OrderNo     string
	LeadID      uuid.UUID
	CustomerID  uuid.UUID
	LeadRef     string
	ProductName string
	ProductType string
	OrderStatus string

	SalesPriceCents int64
	ShippingAddress string

	VendorShopName    string
	VendorAddress     string
	VendorPhone       string
	VendorPaymentMode string
	VendorPriceCents  int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertParams carries everything the conflict-or-insert needs.
type UpsertParams struct {
	LeadID      uuid.UUID
	CustomerID  uuid.UUID
	LeadRef     string
	ProductName string
	ProductType string

	SalesPriceCents int64
	ShippingAddress string

	VendorShopName    string
	VendorAddress     string
	VendorPhone       string
	VendorPaymentMode string
	VendorPriceCents  int64
}

type Repository struct{}

func New() *Repository {
	return &Repository{}
}

const orderColumns = `id, order_no, lead_id, customer_id, lead_ref, product_name, product_type,
	order_status, sales_price_cents, shipping_address,
	vendor_shop_name, vendor_address, vendor_phone, vendor_payment_mode, vendor_price_cents,
	created_at, updated_at`

func scanOrder(row pgx.Row, o *VendorOrder) error {
	return row.Scan(
		&o.ID, &o.OrderNo, &o.LeadID, &o.CustomerID, &o.LeadRef, &o.ProductName, &o.ProductType,
		&o.OrderStatus, &o.SalesPriceCents, &o.ShippingAddress,
		&o.VendorShopName, &o.VendorAddress, &o.VendorPhone, &o.VendorPaymentMode, &o.VendorPriceCents,
		&o.CreatedAt, &o.UpdatedAt,
	)
}

// Upsert inserts or refreshes the order for (customer, product) in one
// statement. The xmax = 0 trick tells apart a fresh insert from a conflict
// update; the order number is generated here and never changes after the
// first insert.
func (r *Repository) Upsert(ctx context.Context, tx db.DBTX, params UpsertParams) (id uuid.UUID, orderNo string, created bool, err error) {
	err = tx.QueryRow(ctx, `
		INSERT INTO vendor_orders (
			id, order_no, lead_id, customer_id, lead_ref, product_name, product_type,
			order_status, sales_price_cents, shipping_address,
			vendor_shop_name, vendor_address, vendor_phone, vendor_payment_mode, vendor_price_cents
		) VALUES ($1, $2, $3, $4, $5, $6, $7, 'placed', $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (customer_id, product_name) DO UPDATE SET
			product_type = $7,
			sales_price_cents = $8,
			shipping_address = $9,
			vendor_shop_name = $10,
			vendor_address = $11,
			vendor_phone = $12,
			vendor_payment_mode = $13,
			vendor_price_cents = $14,
			updated_at = now()
		RETURNING id, order_no, (xmax = 0) AS inserted
	`,
		uuid.New(), refgen.NewRef("VO"), params.LeadID, params.CustomerID, params.LeadRef,
		params.ProductName, params.ProductType, params.SalesPriceCents, params.ShippingAddress,
		params.VendorShopName, params.VendorAddress, params.VendorPhone,
		params.VendorPaymentMode, params.VendorPriceCents,
	).Scan(&id, &orderNo, &created)
	if err != nil {
		return uuid.Nil, "", false, fmt.Errorf("upsert vendor order: %w", err)
	}
	return id, orderNo, created, nil
}

func (r *Repository) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (VendorOrder, error) {
	var o VendorOrder
	err := scanOrder(tx.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM vendor_orders WHERE id = $1
	`, id), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return VendorOrder{}, apperr.NotFound("vendor order not found")
	}
	return o, err
}

// ListFilter narrows the vendor order listing.
type ListFilter struct {
	LeadID     *uuid.UUID
	CustomerID *uuid.UUID
	Limit      int
	Offset     int
}

func (r *Repository) List(ctx context.Context, tx db.DBTX, filter ListFilter) ([]VendorOrder, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	rows, err := tx.Query(ctx, `
		SELECT `+orderColumns+` FROM vendor_orders
		WHERE ($1::uuid IS NULL OR lead_id = $1)
		  AND ($2::uuid IS NULL OR customer_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, filter.LeadID, filter.CustomerID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]VendorOrder, 0)
	for rows.Next() {
		var o VendorOrder
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus moves the order through its vendor-side pipeline.
func (r *Repository) UpdateStatus(ctx context.Context, tx db.DBTX, id uuid.UUID, status string) (VendorOrder, error) {
	var o VendorOrder
	err := scanOrder(tx.QueryRow(ctx, `
		UPDATE vendor_orders SET order_status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns+`
	`, id, status), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return VendorOrder{}, apperr.NotFound("vendor order not found")
	}
	return o, err
}
