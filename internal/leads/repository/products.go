package repository

import (
	"context"
	"fmt"

	"salesops_backend/internal/leads/domain"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
)

// ReplaceProducts rewrites the lead's product list, preserving insertion
// order through the position column. The payload always carries the full
// list, so delete-and-insert keeps positions dense.
func (r *Repository) ReplaceProducts(ctx context.Context, tx db.DBTX, leadID uuid.UUID, products []domain.Product) error {
	if _, err := tx.Exec(ctx, `DELETE FROM lead_products WHERE lead_id = $1`, leadID); err != nil {
		return fmt.Errorf("clear lead products: %w", err)
	}

	for i := range products {
		p := &products[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		p.Position = i
		_, err := tx.Exec(ctx, `
			INSERT INTO lead_products (
				id, lead_id, position, product_type, name,
				sales_price_cents, cost_price_cents,
				vendor_shop_name, vendor_address, vendor_phone,
				vendor_price_cents, vendor_payment_mode
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`,
			p.ID, leadID, p.Position, string(p.ProductType), p.Name,
			p.SalesPriceCents, p.CostPriceCents,
			p.VendorShopName, p.VendorAddress, p.VendorPhone,
			p.VendorPriceCents, p.VendorPaymentMode,
		)
		if err != nil {
			return fmt.Errorf("insert lead product %q: %w", p.Name, err)
		}
	}
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, tx db.DBTX, leadID uuid.UUID) ([]domain.Product, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, position, product_type, name,
			sales_price_cents, cost_price_cents,
			vendor_shop_name, vendor_address, vendor_phone,
			vendor_price_cents, vendor_payment_mode
		FROM lead_products
		WHERE lead_id = $1
		ORDER BY position ASC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		var productType string
		err := rows.Scan(
			&p.ID, &p.Position, &productType, &p.Name,
			&p.SalesPriceCents, &p.CostPriceCents,
			&p.VendorShopName, &p.VendorAddress, &p.VendorPhone,
			&p.VendorPriceCents, &p.VendorPaymentMode,
		)
		if err != nil {
			return nil, err
		}
		p.ProductType = domain.ProductType(productType)
		products = append(products, p)
	}
	return products, rows.Err()
}
