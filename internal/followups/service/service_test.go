package service

import (
	"context"
	"testing"
	"time"

	"salesops_backend/internal/events"
	"salesops_backend/internal/followups/repository"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	followups     map[uuid.UUID]repository.Followup
	markDoneCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{followups: make(map[uuid.UUID]repository.Followup)}
}

func (f *fakeStore) Create(ctx context.Context, tx db.DBTX, params repository.CreateParams) (repository.Followup, error) {
	fu := repository.Followup{
		ID:           uuid.New(),
		FollowupRef:  "FU-20240110-ABCDEF",
		LeadID:       params.LeadID,
		LeadRef:      params.LeadRef,
		LeadNumber:   params.LeadNumber,
		FollowupType: params.FollowupType,
		ScheduledAt:  params.ScheduledAt,
	}
	f.followups[fu.ID] = fu
	return fu, nil
}

func (f *fakeStore) GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (repository.Followup, error) {
	fu, ok := f.followups[id]
	if !ok {
		return repository.Followup{}, apperr.NotFound("follow-up not found")
	}
	return fu, nil
}

func (f *fakeStore) MarkDone(ctx context.Context, tx db.DBTX, id uuid.UUID, completedBy uuid.UUID, notes string) (repository.Followup, error) {
	f.markDoneCalls++
	fu, ok := f.followups[id]
	if !ok {
		return repository.Followup{}, apperr.NotFound("follow-up not found")
	}
	now := time.Now()
	fu.IsDone = true
	fu.CompletedBy = &completedBy
	fu.CompletedAt = &now
	if notes != "" {
		if fu.Notes == "" {
			fu.Notes = notes
		} else {
			fu.Notes += "\n" + notes
		}
	}
	f.followups[id] = fu
	return fu, nil
}

func (f *fakeStore) List(ctx context.Context, tx db.DBTX, filter repository.ListFilter) ([]repository.Followup, error) {
	items := make([]repository.Followup, 0, len(f.followups))
	for _, fu := range f.followups {
		if filter.PendingOnly && fu.IsDone {
			continue
		}
		items = append(items, fu)
	}
	return items, nil
}

type nopBus struct{}

func (nopBus) Publish(ctx context.Context, e events.Event) {}
func (nopBus) PublishSync(ctx context.Context, e events.Event) error {
	return nil
}
func (nopBus) Subscribe(name string, h events.Handler) {}

func newTestService(store Store) *Service {
	return New(store, nil, nopBus{}, logger.New("development"))
}

func TestCompleteStampsMetadata(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	fu, _ := store.Create(context.Background(), nil, repository.CreateParams{LeadID: uuid.New()})
	userID := uuid.New()

	done, err := svc.Complete(context.Background(), fu.ID, userID, "spoke with customer")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !done.IsDone {
		t.Fatalf("follow-up not marked done")
	}
	if done.CompletedBy == nil || *done.CompletedBy != userID {
		t.Fatalf("completed by = %v, want %s", done.CompletedBy, userID)
	}
	if done.Notes != "spoke with customer" {
		t.Fatalf("notes = %q", done.Notes)
	}
}

func TestCompleteTwiceIsNoOp(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	fu, _ := store.Create(context.Background(), nil, repository.CreateParams{LeadID: uuid.New()})
	firstUser := uuid.New()

	first, err := svc.Complete(context.Background(), fu.ID, firstUser, "done")
	if err != nil {
		t.Fatalf("first complete: %v", err)
	}

	second, err := svc.Complete(context.Background(), fu.ID, uuid.New(), "done again")
	if err != nil {
		t.Fatalf("re-completion should be a no-op success, got %v", err)
	}
	if store.markDoneCalls != 1 {
		t.Fatalf("MarkDone called %d times, want 1", store.markDoneCalls)
	}
	if second.CompletedBy == nil || *second.CompletedBy != firstUser {
		t.Fatalf("re-completion must not re-stamp completion metadata")
	}
	if second.CompletedAt == nil || !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("completion time changed on re-completion")
	}
}

func TestCompleteNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Complete(context.Background(), uuid.New(), uuid.New(), "")
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
