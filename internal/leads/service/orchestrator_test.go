package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"salesops_backend/internal/events"
	"salesops_backend/internal/leads/domain"
	"salesops_backend/internal/leads/ports"
	"salesops_backend/internal/leads/transport"
	"salesops_backend/platform/db"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
)

// ---- fakes ----

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return fn(ctx, nil)
}

type fakeLeadStore struct {
	leads      map[uuid.UUID]*domain.Lead
	history    map[uuid.UUID][]domain.HistoryEntry
	scheduled  map[uuid.UUID][]domain.ScheduledFollowup
	nextNumber int64
	// forcedSaveErrs are popped one per Save call before normal behavior.
	forcedSaveErrs []error
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{
		leads:     make(map[uuid.UUID]*domain.Lead),
		history:   make(map[uuid.UUID][]domain.HistoryEntry),
		scheduled: make(map[uuid.UUID][]domain.ScheduledFollowup),
	}
}

func (s *fakeLeadStore) Create(ctx context.Context, tx db.DBTX, lead *domain.Lead) error {
	s.nextNumber++
	lead.LeadNumber = s.nextNumber
	lead.Version = 1
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	stored := *lead
	s.leads[lead.ID] = &stored
	return nil
}

func (s *fakeLeadStore) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (domain.Lead, error) {
	stored, ok := s.leads[id]
	if !ok {
		return domain.Lead{}, fmt.Errorf("lead %s not found", id)
	}
	lead := *stored
	lead.Products = append([]domain.Product(nil), stored.Products...)
	return lead, nil
}

func (s *fakeLeadStore) Save(ctx context.Context, tx db.DBTX, lead *domain.Lead) error {
	if len(s.forcedSaveErrs) > 0 {
		err := s.forcedSaveErrs[0]
		s.forcedSaveErrs = s.forcedSaveErrs[1:]
		if err != nil {
			return err
		}
	}
	stored, ok := s.leads[lead.ID]
	if !ok {
		return fmt.Errorf("lead %s not found", lead.ID)
	}
	if stored.Version != lead.Version {
		return domain.ErrVersionConflict
	}
	updated := *lead
	updated.Version++
	s.leads[lead.ID] = &updated
	lead.Version++
	return nil
}

func (s *fakeLeadStore) ReplaceProducts(ctx context.Context, tx db.DBTX, leadID uuid.UUID, products []domain.Product) error {
	stored, ok := s.leads[leadID]
	if !ok {
		return fmt.Errorf("lead %s not found", leadID)
	}
	stored.Products = append([]domain.Product(nil), products...)
	return nil
}

func (s *fakeLeadStore) AppendHistory(ctx context.Context, tx db.DBTX, leadID uuid.UUID, entry domain.HistoryEntry) error {
	s.history[leadID] = append(s.history[leadID], entry)
	return nil
}

func (s *fakeLeadStore) AppendScheduledFollowup(ctx context.Context, tx db.DBTX, leadID uuid.UUID, sf domain.ScheduledFollowup) error {
	s.scheduled[leadID] = append(s.scheduled[leadID], sf)
	return nil
}

type fakeFollowups struct {
	created []ports.FollowupParams
}

func (f *fakeFollowups) CreateFromLead(ctx context.Context, tx db.DBTX, params ports.FollowupParams) (uuid.UUID, error) {
	f.created = append(f.created, params)
	return uuid.New(), nil
}

type fakeSales struct {
	byLead map[uuid.UUID]ports.SaleParams
}

func newFakeSales() *fakeSales {
	return &fakeSales{byLead: make(map[uuid.UUID]ports.SaleParams)}
}

func (f *fakeSales) RecordSale(ctx context.Context, tx db.DBTX, params ports.SaleParams) (uuid.UUID, bool, error) {
	if _, exists := f.byLead[params.LeadID]; exists {
		return uuid.Nil, false, nil
	}
	f.byLead[params.LeadID] = params
	return uuid.New(), true, nil
}

type paymentState struct {
	ID              uuid.UUID
	SalesPriceCents int64
	PaymentMode     string
	PaymentPortal   string
}

type fakePayments struct {
	byLead map[uuid.UUID]*paymentState
}

func newFakePayments() *fakePayments {
	return &fakePayments{byLead: make(map[uuid.UUID]*paymentState)}
}

func (f *fakePayments) Upsert(ctx context.Context, tx db.DBTX, p ports.PaymentParams) (uuid.UUID, error) {
	existing, ok := f.byLead[p.LeadID]
	if !ok {
		state := &paymentState{
			ID:              uuid.New(),
			SalesPriceCents: valueOr(p.SalesPriceCents, p.LeadSalesPriceCents),
			PaymentMode:     strValueOr(p.PaymentMode, p.LeadPaymentMode),
			PaymentPortal:   strValueOr(p.PaymentPortal, p.LeadPaymentPortal),
		}
		f.byLead[p.LeadID] = state
		return state.ID, nil
	}
	if p.SalesPriceCents != nil {
		existing.SalesPriceCents = *p.SalesPriceCents
	}
	if p.PaymentMode != nil {
		existing.PaymentMode = *p.PaymentMode
	}
	if p.PaymentPortal != nil {
		existing.PaymentPortal = *p.PaymentPortal
	}
	return existing.ID, nil
}

type fakeVendorOrders struct {
	orders map[string]string
	seq    int
}

func newFakeVendorOrders() *fakeVendorOrders {
	return &fakeVendorOrders{orders: make(map[string]string)}
}

func (f *fakeVendorOrders) Upsert(ctx context.Context, tx db.DBTX, p ports.VendorOrderParams) (uuid.UUID, string, bool, error) {
	key := p.CustomerID.String() + "|" + p.ProductName
	if orderNo, ok := f.orders[key]; ok {
		return uuid.New(), orderNo, false, nil
	}
	f.seq++
	orderNo := fmt.Sprintf("VO-%04d", f.seq)
	f.orders[key] = orderNo
	return uuid.New(), orderNo, true, nil
}

type accumulation struct {
	AgentID     uuid.UUID
	MarginCents int64
}

type fakeTargets struct {
	calls []accumulation
}

func (f *fakeTargets) Accumulate(ctx context.Context, agentID uuid.UUID, marginCents int64, now time.Time) error {
	f.calls = append(f.calls, accumulation{AgentID: agentID, MarginCents: marginCents})
	return nil
}

type fakeAudit struct {
	records []ports.AuditParams
}

func (f *fakeAudit) Record(ctx context.Context, params ports.AuditParams) error {
	f.records = append(f.records, params)
	return nil
}

type fakeBus struct {
	published []events.Event
}

func (b *fakeBus) Publish(ctx context.Context, e events.Event) {
	b.published = append(b.published, e)
}

func (b *fakeBus) PublishSync(ctx context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}

func (b *fakeBus) Subscribe(name string, h events.Handler) {}

type testEnv struct {
	orc       *Orchestrator
	leads     *fakeLeadStore
	followups *fakeFollowups
	sales     *fakeSales
	payments  *fakePayments
	vendors   *fakeVendorOrders
	targets   *fakeTargets
	audit     *fakeAudit
	bus       *fakeBus
}

func newTestEnv() *testEnv {
	env := &testEnv{
		leads:     newFakeLeadStore(),
		followups: &fakeFollowups{},
		sales:     newFakeSales(),
		payments:  newFakePayments(),
		vendors:   newFakeVendorOrders(),
		targets:   &fakeTargets{},
		audit:     &fakeAudit{},
		bus:       &fakeBus{},
	}
	env.orc = NewOrchestrator(
		fakeTxRunner{}, env.leads, env.followups, env.sales, env.payments,
		env.vendors, env.targets, env.audit, env.bus, logger.New("development"),
	)
	return env
}

func (env *testEnv) seedLead(t *testing.T, status domain.Status, agentID *uuid.UUID) domain.Lead {
	t.Helper()
	lead := domain.Lead{
		ID:              uuid.New(),
		LeadRef:         "LD-20240110-TEST01",
		Status:          status,
		AssignedAgentID: agentID,
		CustomerName:    "Dana Whitfield",
		CustomerPhone:   "+15551234567",
	}
	if err := env.leads.Create(context.Background(), nil, &lead); err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return lead
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func updateReq(status *string) transport.UpdateLeadRequest {
	return transport.UpdateLeadRequest{Status: status}
}

// ---- tests ----

func TestRepeatedStatusSaveIsIdempotent(t *testing.T) {
	env := newTestEnv()
	lead := env.seedLead(t, domain.StatusFollowUp, nil)

	for i := 0; i < 3; i++ {
		req := updateReq(strPtr(string(domain.StatusFollowUp)))
		_, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &req)
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}

	if len(env.followups.created) != 0 {
		t.Fatalf("expected no follow-ups, got %d", len(env.followups.created))
	}
	if len(env.sales.byLead) != 0 {
		t.Fatalf("expected no sales, got %d", len(env.sales.byLead))
	}
	if len(env.targets.calls) != 0 {
		t.Fatalf("expected no target accumulation, got %d", len(env.targets.calls))
	}
}

func TestFollowupCreatedOnGenuineEntry(t *testing.T) {
	env := newTestEnv()
	lead := env.seedLead(t, domain.StatusNew, nil)

	req := updateReq(strPtr(string(domain.StatusFollowUp)))
	req.ScheduledDate = "2024-01-10"
	req.ScheduledTime = "09:00"
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &req); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(env.followups.created) != 1 {
		t.Fatalf("expected 1 follow-up, got %d", len(env.followups.created))
	}
	fu := env.followups.created[0]
	if fu.LeadNumber != lead.LeadNumber {
		t.Fatalf("follow-up lead number = %d, want %d", fu.LeadNumber, lead.LeadNumber)
	}
	if fu.ScheduledAt == nil || !fu.ScheduledAt.Equal(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("follow-up scheduled at = %v", fu.ScheduledAt)
	}
	if got := len(env.leads.scheduled[lead.ID]); got != 1 {
		t.Fatalf("expected 1 scheduled entry on the lead, got %d", got)
	}

	// Moving between follow-up sub-statuses must not create another record.
	req2 := updateReq(strPtr(string(domain.StatusPaymentFollowUp)))
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &req2); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(env.followups.created) != 1 {
		t.Fatalf("follow-up to follow-up move created a record, got %d", len(env.followups.created))
	}
}

func TestPaymentUpsertKeepsOneRecordWithLatestValues(t *testing.T) {
	env := newTestEnv()
	lead := env.seedLead(t, domain.StatusContacted, nil)

	first := updateReq(nil)
	first.SalesPriceCents = int64Ptr(250_000)
	first.PaymentMode = strPtr("bank_transfer")
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	second := updateReq(nil)
	second.SalesPriceCents = int64Ptr(300_000)
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &second); err != nil {
		t.Fatalf("second update: %v", err)
	}

	if len(env.payments.byLead) != 1 {
		t.Fatalf("expected 1 payment record, got %d", len(env.payments.byLead))
	}
	state := env.payments.byLead[lead.ID]
	if state.SalesPriceCents != 300_000 {
		t.Fatalf("payment sales price = %d, want 300000", state.SalesPriceCents)
	}
	if state.PaymentMode != "bank_transfer" {
		t.Fatalf("payment mode lost on upsert: %q", state.PaymentMode)
	}
}

func TestVendorOrderKeyingAndOrderNoSetOnce(t *testing.T) {
	env := newTestEnv()
	lead := env.seedLead(t, domain.StatusContacted, nil)
	actor := Actor{ID: uuid.New()}

	engineA := []transport.ProductInput{{
		ProductType: "engine", Name: "Engine A", VendorShopName: "Apex Motors",
	}}
	req := updateReq(nil)
	req.Products = &engineA
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, actor, &req); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// Same product name again: same order, no new creation.
	req2 := updateReq(nil)
	req2.Products = &engineA
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, actor, &req2); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(env.vendors.orders) != 1 {
		t.Fatalf("expected 1 vendor order, got %d", len(env.vendors.orders))
	}

	// A different product name opens a second, independent order.
	gearbox := []transport.ProductInput{{
		ProductType: "transmission", Name: "Gearbox Z", VendorAddress: "12 Dock Rd",
	}}
	req3 := updateReq(nil)
	req3.Products = &gearbox
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, actor, &req3); err != nil {
		t.Fatalf("third update: %v", err)
	}
	if len(env.vendors.orders) != 2 {
		t.Fatalf("expected 2 vendor orders, got %d", len(env.vendors.orders))
	}

	stored, err := env.leads.GetByID(context.Background(), nil, lead.ID)
	if err != nil {
		t.Fatalf("reload lead: %v", err)
	}
	if stored.OrderNo == nil || *stored.OrderNo != "VO-0001" {
		t.Fatalf("lead order no = %v, want the first created order VO-0001", stored.OrderNo)
	}
}

func TestTargetAccumulationFiresOncePerGenuineEntry(t *testing.T) {
	env := newTestEnv()
	agentID := uuid.New()
	lead := env.seedLead(t, domain.StatusSalePaymentDone, &agentID)

	req := updateReq(strPtr(string(domain.StatusProductPurchased)))
	req.SalesPriceCents = int64Ptr(300_000)
	req.CostPriceCents = int64Ptr(250_000)
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &req); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(env.targets.calls) != 1 {
		t.Fatalf("expected 1 accumulation, got %d", len(env.targets.calls))
	}
	call := env.targets.calls[0]
	if call.AgentID != agentID || call.MarginCents != 50_000 {
		t.Fatalf("accumulation = %+v, want agent %s margin 50000", call, agentID)
	}

	// Re-saving the same status accumulates nothing further.
	again := updateReq(strPtr(string(domain.StatusProductPurchased)))
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &again); err != nil {
		t.Fatalf("repeat update: %v", err)
	}
	if len(env.targets.calls) != 1 {
		t.Fatalf("repeat entry accumulated again: %d calls", len(env.targets.calls))
	}
}

func TestVersionConflictRetriesThenSucceeds(t *testing.T) {
	env := newTestEnv()
	lead := env.seedLead(t, domain.StatusNew, nil)
	env.leads.forcedSaveErrs = []error{domain.ErrVersionConflict, domain.ErrVersionConflict}

	req := updateReq(strPtr(string(domain.StatusContacted)))
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &req); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	stored, _ := env.leads.GetByID(context.Background(), nil, lead.ID)
	if stored.Status != domain.StatusContacted {
		t.Fatalf("status = %q after retries, want Contacted", stored.Status)
	}
}

func TestVersionConflictExhaustsRetries(t *testing.T) {
	env := newTestEnv()
	lead := env.seedLead(t, domain.StatusNew, nil)
	env.leads.forcedSaveErrs = []error{
		domain.ErrVersionConflict, domain.ErrVersionConflict, domain.ErrVersionConflict,
	}

	req := updateReq(strPtr(string(domain.StatusContacted)))
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &req); err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
}

func TestTransientSaveFailureRetriedOnce(t *testing.T) {
	env := newTestEnv()
	lead := env.seedLead(t, domain.StatusNew, nil)
	env.leads.forcedSaveErrs = []error{errors.New("connection reset by peer")}

	req := updateReq(strPtr(string(domain.StatusContacted)))
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &req); err != nil {
		t.Fatalf("expected a single save failure to be retried, got %v", err)
	}

	stored, _ := env.leads.GetByID(context.Background(), nil, lead.ID)
	if stored.Status != domain.StatusContacted {
		t.Fatalf("status = %q after retry, want Contacted", stored.Status)
	}
}

func TestRepeatedSaveFailureSurfaces(t *testing.T) {
	env := newTestEnv()
	lead := env.seedLead(t, domain.StatusNew, nil)
	env.leads.forcedSaveErrs = []error{
		errors.New("connection reset by peer"),
		errors.New("connection reset by peer"),
	}

	req := updateReq(strPtr(string(domain.StatusContacted)))
	if _, err := env.orc.UpdateLead(context.Background(), lead.ID, Actor{ID: uuid.New()}, &req); err == nil {
		t.Fatal("expected the second consecutive save failure to surface")
	}
}

func TestEndToEndLifecycle(t *testing.T) {
	env := newTestEnv()
	agentID := uuid.New()
	actor := Actor{ID: uuid.New(), Name: "Priya Raman"}
	ctx := context.Background()

	created, err := env.orc.CreateLead(ctx, actor, &transport.CreateLeadRequest{
		CustomerName:    "Dana Whitfield",
		CustomerPhone:   "+15551234567",
		AssignedAgentID: &agentID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusNew {
		t.Fatalf("new lead status = %q", created.Status)
	}
	if got := len(env.leads.history[created.ID]); got != 1 {
		t.Fatalf("history after create = %d entries, want 1", got)
	}

	// Enter a follow-up status with a schedule.
	req := updateReq(strPtr(string(domain.StatusPaymentFollowUp)))
	req.ScheduledDate = "2024-01-10"
	req.ScheduledTime = "09:00"
	if _, err := env.orc.UpdateLead(ctx, created.ID, actor, &req); err != nil {
		t.Fatalf("follow-up update: %v", err)
	}
	if len(env.followups.created) != 1 {
		t.Fatalf("follow-ups = %d, want 1", len(env.followups.created))
	}
	if got := len(env.leads.scheduled[created.ID]); got != 1 {
		t.Fatalf("scheduled entries = %d, want 1", got)
	}
	if got := len(env.leads.history[created.ID]); got != 2 {
		t.Fatalf("history = %d entries, want 2", got)
	}

	// Payment lands.
	pay := updateReq(strPtr(string(domain.StatusSalePaymentDone)))
	pay.SalesPriceCents = int64Ptr(300_000)
	pay.CostPriceCents = int64Ptr(200_000)
	if _, err := env.orc.UpdateLead(ctx, created.ID, actor, &pay); err != nil {
		t.Fatalf("payment update: %v", err)
	}
	sale, ok := env.sales.byLead[created.ID]
	if !ok {
		t.Fatalf("no sale recorded")
	}
	if sale.MarginCents != 100_000 {
		t.Fatalf("sale margin = %d, want 100000", sale.MarginCents)
	}
	payment := env.payments.byLead[created.ID]
	if payment == nil || payment.SalesPriceCents != 300_000 {
		t.Fatalf("payment record = %+v, want sales price 300000", payment)
	}

	// Purchase completes: margin accumulates against targets.
	done := updateReq(strPtr(string(domain.StatusProductPurchased)))
	if _, err := env.orc.UpdateLead(ctx, created.ID, actor, &done); err != nil {
		t.Fatalf("purchase update: %v", err)
	}
	if len(env.targets.calls) != 1 {
		t.Fatalf("target accumulations = %d, want 1", len(env.targets.calls))
	}
	if env.targets.calls[0].MarginCents != 100_000 {
		t.Fatalf("accumulated margin = %d, want 100000", env.targets.calls[0].MarginCents)
	}

	// Every mutation left an audit record.
	if len(env.audit.records) != 4 {
		t.Fatalf("audit records = %d, want 4", len(env.audit.records))
	}
}
