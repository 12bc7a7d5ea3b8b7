// Package adapters implements the lead orchestrator's ports over the
// concrete module services. Each adapter is a thin translation layer: it maps
// port params onto the owning module's types and forwards the caller's
// transaction where the port runs in-tx.
package adapters

import (
	"context"
	"time"

	auditrepo "salesops_backend/internal/audit/repository"
	auditsvc "salesops_backend/internal/audit/service"
	furepo "salesops_backend/internal/followups/repository"
	fusvc "salesops_backend/internal/followups/service"
	"salesops_backend/internal/leads/ports"
	paymentrepo "salesops_backend/internal/payments/repository"
	paymentsvc "salesops_backend/internal/payments/service"
	salerepo "salesops_backend/internal/sales/repository"
	salesvc "salesops_backend/internal/sales/service"
	targetsvc "salesops_backend/internal/targets/service"
	vorepo "salesops_backend/internal/vendororders/repository"
	vosvc "salesops_backend/internal/vendororders/service"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
)

// FollowupAdapter implements ports.FollowupCreator.
type FollowupAdapter struct {
	svc *fusvc.Service
}

func NewFollowupAdapter(svc *fusvc.Service) *FollowupAdapter {
	return &FollowupAdapter{svc: svc}
}

func (a *FollowupAdapter) CreateFromLead(ctx context.Context, tx db.DBTX, params ports.FollowupParams) (uuid.UUID, error) {
	followup, err := a.svc.CreateFromLead(ctx, tx, furepo.CreateParams{
		LeadID:          params.LeadID,
		LeadRef:         params.LeadRef,
		LeadNumber:      params.LeadNumber,
		CustomerName:    params.CustomerName,
		CustomerPhone:   params.CustomerPhone,
		ProductName:     params.ProductName,
		SalesPriceCents: params.SalesPriceCents,
		FollowupType:    params.FollowupType,
		ScheduledAt:     params.ScheduledAt,
		AssignedTo:      params.AssignedTo,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return followup.ID, nil
}

// SaleAdapter implements ports.SaleRecorder.
type SaleAdapter struct {
	svc *salesvc.Service
}

func NewSaleAdapter(svc *salesvc.Service) *SaleAdapter {
	return &SaleAdapter{svc: svc}
}

func (a *SaleAdapter) RecordSale(ctx context.Context, tx db.DBTX, params ports.SaleParams) (uuid.UUID, bool, error) {
	return a.svc.RecordSale(ctx, tx, salerepo.CreateParams{
		LeadID:          params.LeadID,
		LeadRef:         params.LeadRef,
		CustomerName:    params.CustomerName,
		CustomerPhone:   params.CustomerPhone,
		PaymentMode:     params.PaymentMode,
		PaymentPortal:   params.PaymentPortal,
		SalesPriceCents: params.SalesPriceCents,
		CostPriceCents:  params.CostPriceCents,
		MarginCents:     params.MarginCents,
		SoldBy:          params.SoldBy,
	})
}

// PaymentAdapter implements ports.PaymentUpserter.
type PaymentAdapter struct {
	svc *paymentsvc.Service
}

func NewPaymentAdapter(svc *paymentsvc.Service) *PaymentAdapter {
	return &PaymentAdapter{svc: svc}
}

func (a *PaymentAdapter) Upsert(ctx context.Context, tx db.DBTX, params ports.PaymentParams) (uuid.UUID, error) {
	return a.svc.Upsert(ctx, tx, paymentrepo.UpsertParams{
		LeadID: params.LeadID,

		SalesPriceCents: params.SalesPriceCents,
		PaymentMode:     params.PaymentMode,
		PaymentPortal:   params.PaymentPortal,
		DisputeReason:   params.DisputeReason,
		RefundStatus:    params.RefundStatus,

		LeadSalesPriceCents: params.LeadSalesPriceCents,
		LeadPaymentMode:     params.LeadPaymentMode,
		LeadPaymentPortal:   params.LeadPaymentPortal,

		VendorShopName:    params.VendorShopName,
		VendorPaymentMode: params.VendorPaymentMode,
		VendorPriceCents:  params.VendorPriceCents,
	})
}

// VendorOrderAdapter implements ports.VendorOrderUpserter. The customer key
// is the lead itself, so the order carries it twice: once as the conflict key
// and once as the originating lead.
type VendorOrderAdapter struct {
	svc *vosvc.Service
}

func NewVendorOrderAdapter(svc *vosvc.Service) *VendorOrderAdapter {
	return &VendorOrderAdapter{svc: svc}
}

func (a *VendorOrderAdapter) Upsert(ctx context.Context, tx db.DBTX, params ports.VendorOrderParams) (uuid.UUID, string, bool, error) {
	return a.svc.Upsert(ctx, tx, vorepo.UpsertParams{
		LeadID:      params.CustomerID,
		CustomerID:  params.CustomerID,
		LeadRef:     params.LeadRef,
		ProductName: params.ProductName,
		ProductType: params.ProductType,

		SalesPriceCents: params.SalesPriceCents,
		ShippingAddress: params.ShippingAddress,

		VendorShopName:    params.VendorShopName,
		VendorAddress:     params.VendorAddress,
		VendorPhone:       params.VendorPhone,
		VendorPaymentMode: params.VendorPaymentMode,
		VendorPriceCents:  params.VendorPriceCents,
	})
}

// TargetAdapter implements ports.TargetAccumulator.
type TargetAdapter struct {
	svc *targetsvc.Service
}

func NewTargetAdapter(svc *targetsvc.Service) *TargetAdapter {
	return &TargetAdapter{svc: svc}
}

func (a *TargetAdapter) Accumulate(ctx context.Context, agentID uuid.UUID, marginCents int64, now time.Time) error {
	return a.svc.Accumulate(ctx, agentID, marginCents, now)
}

// AuditAdapter implements ports.AuditRecorder.
type AuditAdapter struct {
	svc *auditsvc.Service
}

func NewAuditAdapter(svc *auditsvc.Service) *AuditAdapter {
	return &AuditAdapter{svc: svc}
}

func (a *AuditAdapter) Record(ctx context.Context, params ports.AuditParams) error {
	return a.svc.Record(ctx, auditrepo.AppendParams{
		ActorID:   params.ActorID,
		ActorName: params.ActorName,
		Action:    params.Action,
		Module:    params.Module,
		TargetID:  params.TargetID,
		Before:    params.Before,
		After:     params.After,
	})
}
