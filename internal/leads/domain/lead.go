package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrVersionConflict signals that a concurrent writer saved the lead between
// load and save. The orchestrator reacts by retrying the whole sequence.
var ErrVersionConflict = errors.New("lead version conflict")

// ProductType categorizes a lead's product line items.
type ProductType string

const (
	ProductEngine       ProductType = "engine"
	ProductTransmission ProductType = "transmission"
	ProductPart         ProductType = "part"
)

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	return t == ProductEngine || t == ProductTransmission || t == ProductPart
}

// Product is one line item on a lead, insertion-ordered by Position.
// Vendor fields are the optional sourcing sub-record; a product with a vendor
// shop name or address qualifies for a vendor purchase order.
type Product struct {
	ID                uuid.UUID
	Position          int
	ProductType       ProductType
	Name              string
	SalesPriceCents   int64
	CostPriceCents    int64
	VendorShopName    string
	VendorAddress     string
	VendorPhone       string
	VendorPriceCents  int64
	VendorPaymentMode string
}

// HasVendorInfo reports whether the product carries enough vendor sourcing
// data to open a vendor order.
func (p Product) HasVendorInfo() bool {
	return p.VendorShopName != "" || p.VendorAddress != ""
}

// HistoryEntry is one row of the lead's local append-only audit trail.
type HistoryEntry struct {
	ID        uuid.UUID
	Action    string
	Diff      map[string]any
	ActorID   uuid.UUID
	Note      string
	CreatedAt time.Time
}

// ScheduledFollowup is one entry of the lead's append-only follow-up schedule.
type ScheduledFollowup struct {
	ID           uuid.UUID
	FollowupType string
	ScheduledAt  time.Time
	Notes        string
	IsDone       bool
	CreatedAt    time.Time
}

// Lead is the aggregate root of the sales workflow. Money fields are int64
// cents. TotalMarginCents is stored redundantly as sales minus cost. Version
// is the optimistic-concurrency token: every save is conditional on it.
type Lead struct {
	ID              uuid.UUID
	LeadRef         string
	LeadNumber      int64
	Status          Status
	AssignedAgentID *uuid.UUID

	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string

	SalesPriceCents  int64
	CostPriceCents   int64
	TotalMarginCents int64

	PaymentMode   string
	PaymentPortal string
	DisputeReason string
	RefundStatus  string

	// OrderNo is set from the first vendor order ever created for this lead
	// and never overwritten.
	OrderNo *string

	Products []Product

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MarginCents returns sales price minus cost price.
func (l *Lead) MarginCents() int64 {
	return l.SalesPriceCents - l.CostPriceCents
}

// FirstProduct returns the lead's first product by insertion order, or nil.
func (l *Lead) FirstProduct() *Product {
	if len(l.Products) == 0 {
		return nil
	}
	return &l.Products[0]
}
