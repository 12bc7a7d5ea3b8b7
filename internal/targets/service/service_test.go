package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"salesops_backend/internal/events"
	"salesops_backend/internal/targets/repository"
	"salesops_backend/platform/db"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	mu      sync.Mutex
	targets map[uuid.UUID]*repository.Target
}

func newFakeStore() *fakeStore {
	return &fakeStore{targets: make(map[uuid.UUID]*repository.Target)}
}

func (f *fakeStore) add(t repository.Target) uuid.UUID {
	t.ID = uuid.New()
	f.targets[t.ID] = &t
	return t.ID
}

func (f *fakeStore) Create(_ context.Context, _ db.DBTX, params repository.CreateParams) (repository.Target, error) {
	t := repository.Target{
		ID:              uuid.New(),
		Name:            params.Name,
		PeriodStart:     params.PeriodStart,
		PeriodEnd:       params.PeriodEnd,
		GoalAmountCents: params.GoalAmountCents,
		AssignedUserIDs: params.AssignedUserIDs,
		IsActive:        params.IsActive,
		CreatedBy:       params.CreatedBy,
	}
	f.targets[t.ID] = &t
	return t, nil
}

func (f *fakeStore) GetByID(_ context.Context, _ db.DBTX, id uuid.UUID) (repository.Target, error) {
	return *f.targets[id], nil
}

func (f *fakeStore) List(_ context.Context, _ db.DBTX, _, _ int) ([]repository.Target, error) {
	out := make([]repository.Target, 0, len(f.targets))
	for _, t := range f.targets {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeStore) ListActiveAt(_ context.Context, _ db.DBTX, at time.Time) ([]repository.Target, error) {
	out := make([]repository.Target, 0)
	for _, t := range f.targets {
		if t.IsActive && !at.Before(t.PeriodStart) && !at.After(t.PeriodEnd) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) Increment(_ context.Context, _ db.DBTX, id uuid.UUID, amountCents int64) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.targets[id]
	before := t.AchievedAmountCents
	t.AchievedAmountCents += amountCents
	return before, t.AchievedAmountCents, nil
}

func (f *fakeStore) Update(_ context.Context, _ db.DBTX, id uuid.UUID, params repository.CreateParams) (repository.Target, error) {
	t := f.targets[id]
	t.Name = params.Name
	return *t, nil
}

func (f *fakeStore) Delete(_ context.Context, _ db.DBTX, id uuid.UUID) error {
	delete(f.targets, id)
	return nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func testLogger() *logger.Logger {
	return logger.New("development")
}

func TestMatchesWindowAndAssignment(t *testing.T) {
	agent := uuid.New()
	other := uuid.New()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	target := repository.Target{PeriodStart: start, PeriodEnd: end}

	inWindow := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	if !matches(target, agent, inWindow) {
		t.Fatal("unassigned target should match any agent inside the window")
	}
	if matches(target, agent, start.Add(-time.Hour)) {
		t.Fatal("should not match before the window")
	}
	if matches(target, agent, end.Add(time.Hour)) {
		t.Fatal("should not match after the window")
	}

	target.AssignedUserIDs = []uuid.UUID{other}
	if matches(target, agent, inWindow) {
		t.Fatal("should not match an agent outside the assigned set")
	}
	target.AssignedUserIDs = []uuid.UUID{other, agent}
	if !matches(target, agent, inWindow) {
		t.Fatal("should match an agent inside the assigned set")
	}
}

func TestAccumulateFansOutToMatchingTargets(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := New(store, nil, bus, testLogger())

	agent := uuid.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	window := func(t repository.Target) repository.Target {
		t.PeriodStart = now.AddDate(0, 0, -14)
		t.PeriodEnd = now.AddDate(0, 0, 14)
		t.IsActive = true
		return t
	}

	teamID := store.add(window(repository.Target{Name: "team march", GoalAmountCents: 1_000_000}))
	personalID := store.add(window(repository.Target{Name: "personal", GoalAmountCents: 500_000, AssignedUserIDs: []uuid.UUID{agent}}))
	otherID := store.add(window(repository.Target{Name: "someone else", GoalAmountCents: 500_000, AssignedUserIDs: []uuid.UUID{uuid.New()}}))
	expiredID := store.add(repository.Target{
		Name: "expired", GoalAmountCents: 500_000, IsActive: true,
		PeriodStart: now.AddDate(0, -2, 0), PeriodEnd: now.AddDate(0, -1, 0),
	})

	if err := svc.Accumulate(context.Background(), agent, 200_000, now); err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	if got := store.targets[teamID].AchievedAmountCents; got != 200_000 {
		t.Fatalf("team target achieved = %d, want 200000", got)
	}
	if got := store.targets[personalID].AchievedAmountCents; got != 200_000 {
		t.Fatalf("personal target achieved = %d, want 200000", got)
	}
	if got := store.targets[otherID].AchievedAmountCents; got != 0 {
		t.Fatalf("other agent's target achieved = %d, want 0", got)
	}
	if got := store.targets[expiredID].AchievedAmountCents; got != 0 {
		t.Fatalf("expired target achieved = %d, want 0", got)
	}
}

func TestAccumulatePublishesTargetAchievedOnCrossing(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	svc := New(store, nil, bus, testLogger())

	agent := uuid.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	id := store.add(repository.Target{
		Name:            "march goal",
		GoalAmountCents: 300_000,
		IsActive:        true,
		PeriodStart:     now.AddDate(0, 0, -7),
		PeriodEnd:       now.AddDate(0, 0, 7),
	})

	if err := svc.Accumulate(context.Background(), agent, 200_000, now); err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if len(bus.events) != 0 {
		t.Fatalf("no event expected below the goal, got %d", len(bus.events))
	}

	if err := svc.Accumulate(context.Background(), agent, 200_000, now); err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if len(bus.events) != 1 {
		t.Fatalf("expected one TargetAchieved event, got %d", len(bus.events))
	}
	achieved, ok := bus.events[0].(events.TargetAchieved)
	if !ok {
		t.Fatalf("unexpected event type %T", bus.events[0])
	}
	if achieved.TargetID != id || achieved.AchievedCents != 400_000 {
		t.Fatalf("unexpected event payload: %+v", achieved)
	}

	// Already past the goal: a further increment must not re-announce.
	if err := svc.Accumulate(context.Background(), agent, 100_000, now); err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if len(bus.events) != 1 {
		t.Fatalf("expected no second event, got %d", len(bus.events))
	}
}

func TestAccumulateSkipsDeactivatedTargets(t *testing.T) {
	store := newFakeStore()
	svc := New(store, nil, &recordingBus{}, testLogger())

	agent := uuid.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	activeID := store.add(repository.Target{
		Name: "active", GoalAmountCents: 500_000, IsActive: true,
		PeriodStart: now.AddDate(0, 0, -7), PeriodEnd: now.AddDate(0, 0, 7),
	})
	pausedID := store.add(repository.Target{
		Name: "paused", GoalAmountCents: 500_000,
		PeriodStart: now.AddDate(0, 0, -7), PeriodEnd: now.AddDate(0, 0, 7),
	})

	if err := svc.Accumulate(context.Background(), agent, 150_000, now); err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	if got := store.targets[activeID].AchievedAmountCents; got != 150_000 {
		t.Fatalf("active target achieved = %d, want 150000", got)
	}
	if got := store.targets[pausedID].AchievedAmountCents; got != 0 {
		t.Fatalf("deactivated target achieved = %d, want 0", got)
	}
}

func TestAccumulateIgnoresNonPositiveMargin(t *testing.T) {
	store := newFakeStore()
	svc := New(store, nil, &recordingBus{}, testLogger())

	now := time.Now()
	id := store.add(repository.Target{
		Name: "goal", GoalAmountCents: 100, IsActive: true,
		PeriodStart: now.AddDate(0, 0, -1), PeriodEnd: now.AddDate(0, 0, 1),
	})

	if err := svc.Accumulate(context.Background(), uuid.New(), 0, now); err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if err := svc.Accumulate(context.Background(), uuid.New(), -500, now); err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	if got := store.targets[id].AchievedAmountCents; got != 0 {
		t.Fatalf("achieved = %d, want 0", got)
	}
}
