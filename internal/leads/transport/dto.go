package transport

import (
	"fmt"
	"time"

	"salesops_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ProductInput is one product line item in a create/update payload.
type ProductInput struct {
	ProductType       string `json:"productType" validate:"required,oneof=engine transmission part"`
	Name              string `json:"name" validate:"required,min=1,max=255"`
	SalesPriceCents   int64  `json:"salesPriceCents" validate:"min=0"`
	CostPriceCents    int64  `json:"costPriceCents" validate:"min=0"`
	VendorShopName    string `json:"vendorShopName,omitempty" validate:"max=255"`
	VendorAddress     string `json:"vendorAddress,omitempty" validate:"max=500"`
	VendorPhone       string `json:"vendorPhone,omitempty" validate:"max=32"`
	VendorPriceCents  int64  `json:"vendorPriceCents,omitempty" validate:"min=0"`
	VendorPaymentMode string `json:"vendorPaymentMode,omitempty" validate:"max=64"`
}

// ToDomain converts the input to a domain product.
func (p ProductInput) ToDomain() domain.Product {
	return domain.Product{
		ProductType:       domain.ProductType(p.ProductType),
		Name:              p.Name,
		SalesPriceCents:   p.SalesPriceCents,
		CostPriceCents:    p.CostPriceCents,
		VendorShopName:    p.VendorShopName,
		VendorAddress:     p.VendorAddress,
		VendorPhone:       p.VendorPhone,
		VendorPriceCents:  p.VendorPriceCents,
		VendorPaymentMode: p.VendorPaymentMode,
	}
}

// CreateLeadRequest creates a new lead. Status defaults to New when absent,
// and the classifier runs against New either way, so creating a lead directly
// in a triggering status fires its side effects.
type CreateLeadRequest struct {
	CustomerName    string         `json:"customerName" validate:"required,min=1,max=255"`
	CustomerPhone   string         `json:"customerPhone" validate:"required,min=3,max=32"`
	CustomerEmail   string         `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerAddress string         `json:"customerAddress,omitempty" validate:"max=500"`
	Status          string         `json:"status,omitempty"`
	AssignedAgentID *uuid.UUID     `json:"assignedAgentId,omitempty"`
	SalesPriceCents *int64         `json:"salesPriceCents,omitempty" validate:"omitempty,min=0"`
	CostPriceCents  *int64         `json:"costPriceCents,omitempty" validate:"omitempty,min=0"`
	PaymentMode     string         `json:"paymentMode,omitempty" validate:"max=64"`
	PaymentPortal   string         `json:"paymentPortal,omitempty" validate:"max=64"`
	Products        []ProductInput `json:"products,omitempty" validate:"dive"`
	ScheduledDate   string         `json:"scheduledDate,omitempty"`
	ScheduledTime   string         `json:"scheduledTime,omitempty"`
	FollowupNotes   string         `json:"followupNotes,omitempty" validate:"max=2000"`
	Note            string         `json:"note,omitempty" validate:"max=2000"`
}

// UpdateLeadRequest is the orchestration entry point payload. Every field is
// optional; nil means "leave unchanged". Products, when present, replaces the
// full product list.
type UpdateLeadRequest struct {
	Status          *string         `json:"status,omitempty"`
	AssignedAgentID OptionalUUID    `json:"assignedAgentId,omitzero"`
	CustomerName    *string         `json:"customerName,omitempty" validate:"omitempty,min=1,max=255"`
	CustomerPhone   *string         `json:"customerPhone,omitempty" validate:"omitempty,min=3,max=32"`
	CustomerEmail   *string         `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerAddress *string         `json:"customerAddress,omitempty" validate:"omitempty,max=500"`
	SalesPriceCents *int64          `json:"salesPriceCents,omitempty" validate:"omitempty,min=0"`
	CostPriceCents  *int64          `json:"costPriceCents,omitempty" validate:"omitempty,min=0"`
	PaymentMode     *string         `json:"paymentMode,omitempty" validate:"omitempty,max=64"`
	PaymentPortal   *string         `json:"paymentPortal,omitempty" validate:"omitempty,max=64"`
	DisputeReason   *string         `json:"disputeReason,omitempty" validate:"omitempty,max=1000"`
	RefundStatus    *string         `json:"refundStatus,omitempty" validate:"omitempty,max=64"`
	Products        *[]ProductInput `json:"products,omitempty" validate:"omitempty,dive"`
	ScheduledDate   string          `json:"scheduledDate,omitempty"`
	ScheduledTime   string          `json:"scheduledTime,omitempty"`
	FollowupNotes   string          `json:"followupNotes,omitempty" validate:"max=2000"`
	Note            string          `json:"note,omitempty" validate:"max=2000"`
}

// ParseSchedule combines the separate date and time fields into one timestamp.
// Time defaults to start of day when only a date is given. Returns nil when no
// date was supplied.
func ParseSchedule(date, timeOfDay string) (*time.Time, error) {
	if date == "" {
		return nil, nil
	}

	layout := "2006-01-02"
	value := date
	if timeOfDay != "" {
		layout = "2006-01-02 15:04"
		value = date + " " + timeOfDay
	}

	at, err := time.Parse(layout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", value, err)
	}
	return &at, nil
}

// ProductResponse is one product line item on a lead.
type ProductResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductType       string    `json:"productType"`
	Name              string    `json:"name"`
	SalesPriceCents   int64     `json:"salesPriceCents"`
	CostPriceCents    int64     `json:"costPriceCents"`
	VendorShopName    string    `json:"vendorShopName,omitempty"`
	VendorAddress     string    `json:"vendorAddress,omitempty"`
	VendorPhone       string    `json:"vendorPhone,omitempty"`
	VendorPriceCents  int64     `json:"vendorPriceCents,omitempty"`
	VendorPaymentMode string    `json:"vendorPaymentMode,omitempty"`
}

// LeadResponse is the full lead representation.
type LeadResponse struct {
	ID               uuid.UUID         `json:"id"`
	LeadRef          string            `json:"leadRef"`
	LeadNumber       int64             `json:"leadNumber"`
	Status           string            `json:"status"`
	AssignedAgentID  *uuid.UUID        `json:"assignedAgentId,omitempty"`
	CustomerName     string            `json:"customerName"`
	CustomerPhone    string            `json:"customerPhone"`
	CustomerEmail    string            `json:"customerEmail,omitempty"`
	CustomerAddress  string            `json:"customerAddress,omitempty"`
	SalesPriceCents  int64             `json:"salesPriceCents"`
	CostPriceCents   int64             `json:"costPriceCents"`
	TotalMarginCents int64             `json:"totalMarginCents"`
	PaymentMode      string            `json:"paymentMode,omitempty"`
	PaymentPortal    string            `json:"paymentPortal,omitempty"`
	DisputeReason    string            `json:"disputeReason,omitempty"`
	RefundStatus     string            `json:"refundStatus,omitempty"`
	OrderNo          *string           `json:"orderNo,omitempty"`
	Products         []ProductResponse `json:"products"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// HistoryEntryResponse is one row of the lead's local history.
type HistoryEntryResponse struct {
	ID        uuid.UUID      `json:"id"`
	Action    string         `json:"action"`
	Diff      map[string]any `json:"diff,omitempty"`
	ActorID   uuid.UUID      `json:"actorId"`
	Note      string         `json:"note,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// ScheduledFollowupResponse is one entry of the lead's follow-up schedule.
type ScheduledFollowupResponse struct {
	ID           uuid.UUID `json:"id"`
	FollowupType string    `json:"followupType"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	Notes        string    `json:"notes,omitempty"`
	IsDone       bool      `json:"isDone"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LeadListResponse is a page of leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
}

// ToLeadResponse maps a domain lead to its transport representation.
func ToLeadResponse(lead domain.Lead) LeadResponse {
	products := make([]ProductResponse, 0, len(lead.Products))
	for _, p := range lead.Products {
		products = append(products, ProductResponse{
			ID:                p.ID,
			ProductType:       string(p.ProductType),
			Name:              p.Name,
			SalesPriceCents:   p.SalesPriceCents,
			CostPriceCents:    p.CostPriceCents,
			VendorShopName:    p.VendorShopName,
			VendorAddress:     p.VendorAddress,
			VendorPhone:       p.VendorPhone,
			VendorPriceCents:  p.VendorPriceCents,
			VendorPaymentMode: p.VendorPaymentMode,
		})
	}

	return LeadResponse{
		ID:               lead.ID,
		LeadRef:          lead.LeadRef,
		LeadNumber:       lead.LeadNumber,
		Status:           string(lead.Status),
		AssignedAgentID:  lead.AssignedAgentID,
		CustomerName:     lead.CustomerName,
		CustomerPhone:    lead.CustomerPhone,
		CustomerEmail:    lead.CustomerEmail,
		CustomerAddress:  lead.CustomerAddress,
		SalesPriceCents:  lead.SalesPriceCents,
		CostPriceCents:   lead.CostPriceCents,
		TotalMarginCents: lead.TotalMarginCents,
		PaymentMode:      lead.PaymentMode,
		PaymentPortal:    lead.PaymentPortal,
		DisputeReason:    lead.DisputeReason,
		RefundStatus:     lead.RefundStatus,
		OrderNo:          lead.OrderNo,
		Products:         products,
		CreatedAt:        lead.CreatedAt,
		UpdatedAt:        lead.UpdatedAt,
	}
}

// ToHistoryResponse maps history entries.
func ToHistoryResponse(entries []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, HistoryEntryResponse{
			ID:        e.ID,
			Action:    e.Action,
			Diff:      e.Diff,
			ActorID:   e.ActorID,
			Note:      e.Note,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
