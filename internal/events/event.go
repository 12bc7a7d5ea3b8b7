// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"salesops_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	LeadRef       string     `json:"leadRef"`
	CustomerName  string     `json:"customerName"`
	CustomerPhone string     `json:"customerPhone"`
	Status        string     `json:"status"`
	AssignedTo    *uuid.UUID `json:"assignedTo,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published after a status transition commits, together
// with whatever dependent records the transition produced.
type LeadStatusChanged struct {
	BaseEvent
	LeadID     uuid.UUID  `json:"leadId"`
	LeadRef    string     `json:"leadRef"`
	OldStatus  string     `json:"oldStatus"`
	NewStatus  string     `json:"newStatus"`
	ChangedBy  uuid.UUID  `json:"changedBy"`
	SaleID     *uuid.UUID `json:"saleId,omitempty"`
	FollowupID *uuid.UUID `json:"followupId,omitempty"`
	OrderNo    string     `json:"orderNo,omitempty"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadAssigned is published when a lead is assigned to a user.
type LeadAssigned struct {
	BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	AssignedTo uuid.UUID `json:"assignedTo"`
	AssignedBy uuid.UUID `json:"assignedBy"`
}

func (e LeadAssigned) EventName() string { return "leads.lead.assigned" }

// =============================================================================
// Follow-up Domain Events
// =============================================================================

// FollowupScheduled is published when a follow-up is created for a lead.
type FollowupScheduled struct {
	BaseEvent
	FollowupID uuid.UUID `json:"followupId"`
	LeadID     uuid.UUID `json:"leadId"`
	Kind       string    `json:"kind"`
	DueAt      time.Time `json:"dueAt"`
	AssignedTo uuid.UUID `json:"assignedTo"`
}

func (e FollowupScheduled) EventName() string { return "followups.followup.scheduled" }

// FollowupCompleted is published when a pending follow-up is marked done.
type FollowupCompleted struct {
	BaseEvent
	FollowupID  uuid.UUID `json:"followupId"`
	LeadID      uuid.UUID `json:"leadId"`
	CompletedBy uuid.UUID `json:"completedBy"`
}

func (e FollowupCompleted) EventName() string { return "followups.followup.completed" }

// FollowupReminderDue is published by the scheduler when a follow-up reaches
// its due time without being completed.
type FollowupReminderDue struct {
	BaseEvent
	FollowupID uuid.UUID `json:"followupId"`
	LeadID     uuid.UUID `json:"leadId"`
	AssignedTo uuid.UUID `json:"assignedTo"`
	DueAt      time.Time `json:"dueAt"`
}

func (e FollowupReminderDue) EventName() string { return "followups.followup.reminder_due" }

// =============================================================================
// Sales Domain Events
// =============================================================================

// SaleRecorded is published when a sale record is created for a lead.
type SaleRecorded struct {
	BaseEvent
	SaleID      uuid.UUID `json:"saleId"`
	LeadID      uuid.UUID `json:"leadId"`
	LeadRef     string    `json:"leadRef"`
	AmountCents int64     `json:"amountCents"`
	MarginCents int64     `json:"marginCents"`
	SoldBy      uuid.UUID `json:"soldBy"`
}

func (e SaleRecorded) EventName() string { return "sales.sale.recorded" }

// PaymentRecorded is published when a payment record is created or updated.
type PaymentRecorded struct {
	BaseEvent
	PaymentID   uuid.UUID `json:"paymentId"`
	LeadID      uuid.UUID `json:"leadId"`
	AmountCents int64     `json:"amountCents"`
	Method      string    `json:"method,omitempty"`
}

func (e PaymentRecorded) EventName() string { return "payments.payment.recorded" }

// VendorOrderCreated is published when a new vendor order is opened.
type VendorOrderCreated struct {
	BaseEvent
	OrderID     uuid.UUID `json:"orderId"`
	LeadID      uuid.UUID `json:"leadId"`
	OrderNo     string    `json:"orderNo"`
	ProductName string    `json:"productName"`
}

func (e VendorOrderCreated) EventName() string { return "vendororders.order.created" }

// =============================================================================
// Targets Domain Events
// =============================================================================

// TargetAchieved is published when accumulation pushes a target past its goal.
type TargetAchieved struct {
	BaseEvent
	TargetID      uuid.UUID `json:"targetId"`
	Name          string    `json:"name"`
	AchievedCents int64     `json:"achievedCents"`
	GoalCents     int64     `json:"goalCents"`
}

func (e TargetAchieved) EventName() string { return "targets.target.achieved" }
