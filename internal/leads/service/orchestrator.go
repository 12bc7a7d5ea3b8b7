package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesops_backend/internal/events"
	"salesops_backend/internal/leads/domain"
	"salesops_backend/internal/leads/ports"
	"salesops_backend/internal/leads/transport"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"
	"salesops_backend/platform/logger"
	"salesops_backend/platform/phone"
	"salesops_backend/platform/refgen"

	"github.com/google/uuid"
)

// maxSaveAttempts bounds the optimistic-concurrency retry loop. A conflict
// means another writer saved the lead mid-sequence; the loser re-runs the
// whole orchestration against the fresh state.
const maxSaveAttempts = 3

// Actor identifies who is performing the operation, for history and audit.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// Orchestrator drives the side effects of a lead status transition: dependent
// record writes happen inside one transaction with the lead save, target
// accumulation and audit run best-effort after commit.
type Orchestrator struct {
	tx           db.TxRunner
	leads        ports.LeadStore
	followups    ports.FollowupCreator
	sales        ports.SaleRecorder
	payments     ports.PaymentUpserter
	vendorOrders ports.VendorOrderUpserter
	targets      ports.TargetAccumulator
	audit        ports.AuditRecorder
	bus          events.Bus
	log          *logger.Logger
	now          func() time.Time
}

func NewOrchestrator(
	tx db.TxRunner,
	leads ports.LeadStore,
	followups ports.FollowupCreator,
	sales ports.SaleRecorder,
	payments ports.PaymentUpserter,
	vendorOrders ports.VendorOrderUpserter,
	targets ports.TargetAccumulator,
	audit ports.AuditRecorder,
	bus events.Bus,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		tx:           tx,
		leads:        leads,
		followups:    followups,
		sales:        sales,
		payments:     payments,
		vendorOrders: vendorOrders,
		targets:      targets,
		audit:        audit,
		bus:          bus,
		log:          log,
		now:          time.Now,
	}
}

// txResult collects everything one orchestration run produced, so the
// post-commit phase knows what to accumulate, audit, and publish.
type txResult struct {
	lead           domain.Lead
	before         domain.Lead
	created        bool
	oldStatus      domain.Status
	statusChanged  bool
	effects        domain.Effects
	marginCents    int64
	followupID     *uuid.UUID
	followupType   string
	followupDueAt  *time.Time
	saleID         *uuid.UUID
	saleAmount     int64
	paymentID      *uuid.UUID
	createdOrderNo string
}

// CreateLead inserts a new lead and runs the full side-effect pipeline with
// New as the prior status, so creating a lead directly in a triggering status
// behaves like transitioning into it.
func (o *Orchestrator) CreateLead(ctx context.Context, actor Actor, req *transport.CreateLeadRequest) (domain.Lead, error) {
	newStatus, err := requestedStatus(req.Status)
	if err != nil {
		return domain.Lead{}, err
	}
	scheduledAt, err := transport.ParseSchedule(req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		return domain.Lead{}, apperr.Validation(err.Error())
	}

	products := make([]domain.Product, 0, len(req.Products))
	for _, pi := range req.Products {
		products = append(products, pi.ToDomain())
	}

	lead := domain.Lead{
		ID:              uuid.New(),
		LeadRef:         refgen.NewRef("LD"),
		Status:          domain.StatusNew,
		AssignedAgentID: req.AssignedAgentID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   phone.NormalizeE164(req.CustomerPhone),
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		SalesPriceCents: valueOr(req.SalesPriceCents, 0),
		CostPriceCents:  valueOr(req.CostPriceCents, 0),
		PaymentMode:     req.PaymentMode,
		PaymentPortal:   req.PaymentPortal,
		Products:        products,
	}
	lead.TotalMarginCents = lead.MarginCents()

	var res txResult
	createTx := func(ctx context.Context, tx db.DBTX) error {
		if err := o.leads.Create(ctx, tx, &lead); err != nil {
			return apperr.Wrap(apperr.KindInternal, "create lead", err)
		}

		res = txResult{
			created:     true,
			oldStatus:   domain.StatusNew,
			effects:     domain.Classify(domain.StatusNew, newStatus),
			marginCents: lead.MarginCents(),
		}

		upd := updateViewOf(req)
		if err := o.runSideEffects(ctx, tx, &lead, upd, newStatus, scheduledAt, lead.SalesPriceCents, lead.CostPriceCents, actor, &res); err != nil {
			return err
		}

		if newStatus != "" && newStatus != domain.StatusNew {
			lead.Status = newStatus
			res.statusChanged = true
		}

		entry := domain.HistoryEntry{Action: "created", ActorID: actor.ID, Note: req.Note}
		if err := o.leads.AppendHistory(ctx, tx, lead.ID, entry); err != nil {
			return apperr.Wrap(apperr.KindInternal, "append history", err)
		}
		if err := o.leads.Save(ctx, tx, &lead); err != nil {
			return apperr.Wrap(apperr.KindInternal, "save lead", err)
		}
		res.lead = lead
		return nil
	}
	err = o.tx.RunInTx(ctx, createTx)
	if apperr.Is(err, apperr.KindInternal) {
		o.log.Warn("lead create persistence failure, retrying", "lead_ref", lead.LeadRef, "error", err)
		err = o.tx.RunInTx(ctx, createTx)
	}
	if err != nil {
		return domain.Lead{}, err
	}

	o.afterCommit(ctx, actor, "lead.created", &res)
	return res.lead, nil
}

// UpdateLead is the main orchestration entry point. The five dependent writes
// and the lead save share one transaction; a version conflict re-runs the
// whole sequence up to maxSaveAttempts times, and any other persistence
// failure is retried once before surfacing.
func (o *Orchestrator) UpdateLead(ctx context.Context, id uuid.UUID, actor Actor, req *transport.UpdateLeadRequest) (domain.Lead, error) {
	var newStatus domain.Status
	if req.Status != nil {
		var err error
		newStatus, err = requestedStatus(*req.Status)
		if err != nil {
			return domain.Lead{}, err
		}
	}
	scheduledAt, err := transport.ParseSchedule(req.ScheduledDate, req.ScheduledTime)
	if err != nil {
		return domain.Lead{}, apperr.Validation(err.Error())
	}

	var res txResult
	conflicts := 0
	persistenceRetried := false
	for {
		res = txResult{}
		err = o.tx.RunInTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return o.runUpdate(ctx, tx, id, actor, req, newStatus, scheduledAt, &res)
		})
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			conflicts++
			if conflicts < maxSaveAttempts {
				continue
			}
			return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "lead update contention", err)
		}
		if apperr.Is(err, apperr.KindInternal) && !persistenceRetried {
			persistenceRetried = true
			o.log.Warn("lead update persistence failure, retrying", "lead_id", id.String(), "error", err)
			continue
		}
		return domain.Lead{}, err
	}

	o.afterCommit(ctx, actor, "lead.updated", &res)
	return res.lead, nil
}

func (o *Orchestrator) runUpdate(ctx context.Context, tx db.DBTX, id uuid.UUID, actor Actor, req *transport.UpdateLeadRequest, newStatus domain.Status, scheduledAt *time.Time, res *txResult) error {
	lead, err := o.leads.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	res.before = lead
	res.oldStatus = lead.Status
	res.effects = domain.Classify(lead.Status, newStatus)

	salesPrice := valueOr(req.SalesPriceCents, lead.SalesPriceCents)
	costPrice := valueOr(req.CostPriceCents, lead.CostPriceCents)
	res.marginCents = salesPrice - costPrice

	if err := o.runSideEffects(ctx, tx, &lead, req, newStatus, scheduledAt, salesPrice, costPrice, actor, res); err != nil {
		return err
	}

	diff, productsChanged := applyUpdate(&lead, req)
	if productsChanged {
		if err := o.leads.ReplaceProducts(ctx, tx, lead.ID, lead.Products); err != nil {
			return apperr.Wrap(apperr.KindInternal, "replace products", err)
		}
	}
	res.statusChanged = newStatus != "" && newStatus != res.oldStatus

	entry := domain.HistoryEntry{Action: "updated", ActorID: actor.ID, Note: req.Note, Diff: diff}
	if res.statusChanged {
		entry.Action = "status_changed"
		entry.Note = historyNote(res.oldStatus, newStatus, req.Note)
	}
	if err := o.leads.AppendHistory(ctx, tx, lead.ID, entry); err != nil {
		return apperr.Wrap(apperr.KindInternal, "append history", err)
	}

	if err := o.leads.Save(ctx, tx, &lead); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		return apperr.Wrap(apperr.KindInternal, "save lead", err)
	}
	res.lead = lead
	return nil
}

// runSideEffects drives the dependent writes in their fixed order: follow-up,
// sale, payment record, vendor orders. Each step is conditioned on its own
// trigger. Any failure aborts the transaction; there is no partial apply.
func (o *Orchestrator) runSideEffects(ctx context.Context, tx db.DBTX, lead *domain.Lead, req *transport.UpdateLeadRequest, newStatus domain.Status, scheduledAt *time.Time, salesPrice, costPrice int64, actor Actor, res *txResult) error {
	if res.effects.EnteringFollowup {
		productName := ""
		if p := lead.FirstProduct(); p != nil {
			productName = p.Name
		}
		fuID, err := o.followups.CreateFromLead(ctx, tx, ports.FollowupParams{
			LeadID:          lead.ID,
			LeadRef:         lead.LeadRef,
			LeadNumber:      lead.LeadNumber,
			CustomerName:    strValueOr(req.CustomerName, lead.CustomerName),
			CustomerPhone:   strValueOr(req.CustomerPhone, lead.CustomerPhone),
			ProductName:     productName,
			SalesPriceCents: salesPrice,
			FollowupType:    string(newStatus),
			ScheduledAt:     scheduledAt,
			AssignedTo:      lead.AssignedAgentID,
		})
		if err != nil {
			o.log.SideEffectError("followup_create", lead.ID.String(), err)
			return apperr.Wrap(apperr.KindInternal, "schedule follow-up", err)
		}
		res.followupID = &fuID
		res.followupType = string(newStatus)
		res.followupDueAt = scheduledAt

		if scheduledAt != nil {
			sf := domain.ScheduledFollowup{
				FollowupType: string(newStatus),
				ScheduledAt:  *scheduledAt,
				Notes:        req.FollowupNotes,
			}
			if err := o.leads.AppendScheduledFollowup(ctx, tx, lead.ID, sf); err != nil {
				o.log.SideEffectError("scheduled_followup_append", lead.ID.String(), err)
				return apperr.Wrap(apperr.KindInternal, "append scheduled follow-up", err)
			}
		}
	}

	if res.effects.EnteringSalePaymentDone {
		saleID, created, err := o.sales.RecordSale(ctx, tx, ports.SaleParams{
			LeadID:          lead.ID,
			LeadRef:         lead.LeadRef,
			CustomerName:    strValueOr(req.CustomerName, lead.CustomerName),
			CustomerPhone:   strValueOr(req.CustomerPhone, lead.CustomerPhone),
			PaymentMode:     strValueOr(req.PaymentMode, lead.PaymentMode),
			PaymentPortal:   strValueOr(req.PaymentPortal, lead.PaymentPortal),
			SalesPriceCents: salesPrice,
			CostPriceCents:  costPrice,
			MarginCents:     salesPrice - costPrice,
			SoldBy:          actor.ID,
		})
		if err != nil {
			o.log.SideEffectError("sale_create", lead.ID.String(), err)
			return apperr.Wrap(apperr.KindInternal, "record sale", err)
		}
		if created {
			res.saleID = &saleID
			res.saleAmount = salesPrice
		}
	}

	if req.SalesPriceCents != nil && *req.SalesPriceCents > 0 {
		params := ports.PaymentParams{
			LeadID:              lead.ID,
			SalesPriceCents:     req.SalesPriceCents,
			PaymentMode:         req.PaymentMode,
			PaymentPortal:       req.PaymentPortal,
			DisputeReason:       req.DisputeReason,
			RefundStatus:        req.RefundStatus,
			LeadSalesPriceCents: lead.SalesPriceCents,
			LeadPaymentMode:     lead.PaymentMode,
			LeadPaymentPortal:   lead.PaymentPortal,
		}
		first := lead.FirstProduct()
		if req.Products != nil && len(*req.Products) > 0 {
			p := (*req.Products)[0].ToDomain()
			first = &p
		}
		if first != nil {
			params.VendorShopName = first.VendorShopName
			params.VendorPaymentMode = first.VendorPaymentMode
			params.VendorPriceCents = first.VendorPriceCents
		}
		payID, err := o.payments.Upsert(ctx, tx, params)
		if err != nil {
			o.log.SideEffectError("payment_upsert", lead.ID.String(), err)
			return apperr.Wrap(apperr.KindInternal, "record payment", err)
		}
		res.paymentID = &payID
	}

	if req.Products != nil {
		for _, pi := range *req.Products {
			p := pi.ToDomain()
			if !p.HasVendorInfo() {
				continue
			}
			_, orderNo, created, err := o.vendorOrders.Upsert(ctx, tx, ports.VendorOrderParams{
				CustomerID:        lead.ID,
				LeadRef:           lead.LeadRef,
				ProductName:       p.Name,
				ProductType:       string(p.ProductType),
				SalesPriceCents:   p.SalesPriceCents,
				VendorShopName:    p.VendorShopName,
				VendorAddress:     p.VendorAddress,
				VendorPhone:       p.VendorPhone,
				VendorPriceCents:  p.VendorPriceCents,
				VendorPaymentMode: p.VendorPaymentMode,
				ShippingAddress:   strValueOr(req.CustomerAddress, lead.CustomerAddress),
			})
			if err != nil {
				o.log.SideEffectError("vendor_order_upsert", lead.ID.String(), err)
				return apperr.Wrap(apperr.KindInternal, "vendor order", err)
			}
			if created {
				if res.createdOrderNo == "" {
					res.createdOrderNo = orderNo
				}
				if lead.OrderNo == nil {
					no := orderNo
					lead.OrderNo = &no
				}
			}
		}
	}

	return nil
}

// afterCommit runs the eventually-consistent tail of the pipeline: target
// accumulation, audit trail, domain events. Failures here are logged, never
// surfaced, because the transaction has already committed.
func (o *Orchestrator) afterCommit(ctx context.Context, actor Actor, action string, res *txResult) {
	lead := res.lead

	if res.effects.EnteringProductPurchased && res.marginCents > 0 && lead.AssignedAgentID != nil {
		if err := o.targets.Accumulate(ctx, *lead.AssignedAgentID, res.marginCents, o.now()); err != nil {
			o.log.SideEffectError("target_accumulation", lead.ID.String(), err)
		}
	}

	var before any
	if !res.created {
		before = leadSnapshot(res.before)
	}
	err := o.audit.Record(ctx, ports.AuditParams{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Module:    "leads",
		TargetID:  lead.ID.String(),
		Before:    before,
		After:     leadSnapshot(lead),
	})
	if err != nil {
		o.log.AuditWriteError("leads", lead.ID.String(), err)
	}

	if res.created {
		o.bus.Publish(ctx, events.LeadCreated{
			BaseEvent:     events.NewBaseEvent(),
			LeadID:        lead.ID,
			LeadRef:       lead.LeadRef,
			CustomerName:  lead.CustomerName,
			CustomerPhone: lead.CustomerPhone,
			Status:        string(lead.Status),
			AssignedTo:    lead.AssignedAgentID,
		})
	}
	if res.saleID != nil {
		o.bus.Publish(ctx, events.SaleRecorded{
			BaseEvent:   events.NewBaseEvent(),
			SaleID:      *res.saleID,
			LeadID:      lead.ID,
			LeadRef:     lead.LeadRef,
			AmountCents: res.saleAmount,
			MarginCents: res.marginCents,
			SoldBy:      actor.ID,
		})
	}
	if res.followupID != nil && res.followupDueAt != nil {
		var assignedTo uuid.UUID
		if lead.AssignedAgentID != nil {
			assignedTo = *lead.AssignedAgentID
		}
		o.bus.Publish(ctx, events.FollowupScheduled{
			BaseEvent:  events.NewBaseEvent(),
			FollowupID: *res.followupID,
			LeadID:     lead.ID,
			Kind:       res.followupType,
			DueAt:      *res.followupDueAt,
			AssignedTo: assignedTo,
		})
	}
	if res.statusChanged {
		o.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     lead.ID,
			LeadRef:    lead.LeadRef,
			OldStatus:  string(res.oldStatus),
			NewStatus:  string(lead.Status),
			ChangedBy:  actor.ID,
			SaleID:     res.saleID,
			FollowupID: res.followupID,
			OrderNo:    res.createdOrderNo,
		})
	}
}

// leadSnapshot is the compact before/after view stored in the audit trail.
func leadSnapshot(lead domain.Lead) map[string]any {
	return map[string]any{
		"status":           string(lead.Status),
		"assignedAgentId":  lead.AssignedAgentID,
		"customerName":     lead.CustomerName,
		"salesPriceCents":  lead.SalesPriceCents,
		"costPriceCents":   lead.CostPriceCents,
		"totalMarginCents": lead.TotalMarginCents,
		"orderNo":          lead.OrderNo,
		"version":          lead.Version,
	}
}

func historyNote(from, to domain.Status, userNote string) string {
	note := fmt.Sprintf("Status changed from %q to %q", from, to)
	if userNote != "" {
		note += ". " + userNote
	}
	return note
}

func requestedStatus(raw string) (domain.Status, error) {
	if raw == "" {
		return "", nil
	}
	status := domain.Status(raw)
	if !status.Valid() {
		return "", apperr.Validation("unknown status").WithDetails(map[string]string{"status": raw})
	}
	return status, nil
}

// updateViewOf exposes a create payload through the update payload shape so
// both entry points share one side-effect pipeline.
func updateViewOf(req *transport.CreateLeadRequest) *transport.UpdateLeadRequest {
	upd := &transport.UpdateLeadRequest{
		SalesPriceCents: req.SalesPriceCents,
		CostPriceCents:  req.CostPriceCents,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		FollowupNotes:   req.FollowupNotes,
		Note:            req.Note,
	}
	if req.PaymentMode != "" {
		upd.PaymentMode = &req.PaymentMode
	}
	if req.PaymentPortal != "" {
		upd.PaymentPortal = &req.PaymentPortal
	}
	if len(req.Products) > 0 {
		products := req.Products
		upd.Products = &products
	}
	return upd
}
