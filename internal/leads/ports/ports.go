// Package ports defines the interfaces the lead orchestrator uses to drive
// dependent-record writes in other modules. The adapters package implements
// them over the concrete module services; tests substitute fakes.
package ports

import (
	"context"
	"time"

	"salesops_backend/internal/leads/domain"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
)

// LeadStore persists the lead aggregate and its child tables. All methods
// accept the transaction they must run in.
type LeadStore interface {
	Create(ctx context.Context, tx db.DBTX, lead *domain.Lead) error
	// GetByID loads the lead with its products. Returns apperr NotFound when
	// the id does not resolve.
	GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (domain.Lead, error)
	// Save writes the lead conditionally on the version it was loaded with
	// and bumps the version. Returns ErrVersionConflict when a concurrent
	// writer got there first.
	Save(ctx context.Context, tx db.DBTX, lead *domain.Lead) error
	ReplaceProducts(ctx context.Context, tx db.DBTX, leadID uuid.UUID, products []domain.Product) error
	AppendHistory(ctx context.Context, tx db.DBTX, leadID uuid.UUID, entry domain.HistoryEntry) error
	AppendScheduledFollowup(ctx context.Context, tx db.DBTX, leadID uuid.UUID, sf domain.ScheduledFollowup) error
}

// FollowupParams carries the denormalized lead snapshot a new follow-up stores.
type FollowupParams struct {
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

// FollowupCreator opens a follow-up record when a lead enters a follow-up status.
type FollowupCreator interface {
	CreateFromLead(ctx context.Context, tx db.DBTX, params FollowupParams) (uuid.UUID, error)
}

// SaleParams carries the snapshot a sale record freezes at creation time.
type SaleParams struct {
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

// SaleRecorder creates the sale record for a lead entering Sale Payment Done.
// Creation is idempotent per lead: created is false when a sale already exists.
type SaleRecorder interface {
	RecordSale(ctx context.Context, tx db.DBTX, params SaleParams) (saleID uuid.UUID, created bool, err error)
}

// PaymentParams carries the upsert inputs. Pointer fields are payload values
// (nil means the payload did not supply one); the Lead* fields are the lead's
// current stored values used as the final fallback.
type PaymentParams struct {
	LeadID uuid.UUID

	SalesPriceCents *int64
	PaymentMode     *string
	PaymentPortal   *string
	DisputeReason   *string
	RefundStatus    *string

	LeadSalesPriceCents int64
	LeadPaymentMode     string
	LeadPaymentPortal   string

	// Vendor payment info denormalized from the lead's first product.
	VendorShopName    string
	VendorPaymentMode string
	VendorPriceCents  int64
}

// PaymentUpserter maintains the at-most-one payment record per lead.
type PaymentUpserter interface {
	Upsert(ctx context.Context, tx db.DBTX, params PaymentParams) (uuid.UUID, error)
}

// VendorOrderParams identifies one product's vendor order by (customer, product name).
type VendorOrderParams struct {
	CustomerID        uuid.UUID
	LeadRef           string
	ProductName       string
	ProductType       string
	SalesPriceCents   int64
	VendorShopName    string
	VendorAddress     string
	VendorPhone       string
	VendorPriceCents  int64
	VendorPaymentMode string
	ShippingAddress   string
}

// VendorOrderUpserter creates or refreshes a vendor order. It reports the
// order number and whether a new row was created, so the orchestrator can set
// the lead's order number exactly once.
type VendorOrderUpserter interface {
	Upsert(ctx context.Context, tx db.DBTX, params VendorOrderParams) (orderID uuid.UUID, orderNo string, created bool, err error)
}

// TargetAccumulator fans a margin out to all matching active targets. It runs
// after the lead transaction commits and is best-effort.
type TargetAccumulator interface {
	Accumulate(ctx context.Context, agentID uuid.UUID, marginCents int64, now time.Time) error
}

// AuditParams is one append-only audit trail entry.
type AuditParams struct {
	ActorID   uuid.UUID
	ActorName string
	Action    string
	Module    string
	TargetID  string
	Before    any
	After     any
}

// AuditRecorder appends to the global audit trail. Failures are logged by the
// caller and never fail the originating operation.
type AuditRecorder interface {
	Record(ctx context.Context, params AuditParams) error
}
