// Package service holds the follow-up workflow: creation from lead
// transitions and the explicit completion action.
package service

import (
	"context"

	"salesops_backend/internal/events"
	"salesops_backend/internal/followups/repository"
	"salesops_backend/platform/db"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. Satisfied by
// *repository.Repository; tests substitute a fake.
type Store interface {
	Create(ctx context.Context, tx db.DBTX, params repository.CreateParams) (repository.Followup, error)
	GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (repository.Followup, error)
	MarkDone(ctx context.Context, tx db.DBTX, id uuid.UUID, completedBy uuid.UUID, notes string) (repository.Followup, error)
	List(ctx context.Context, tx db.DBTX, filter repository.ListFilter) ([]repository.Followup, error)
}

type Service struct {
	store Store
	pool  db.DBTX
	bus   events.Bus
	log   *logger.Logger
}

func New(store Store, pool db.DBTX, bus events.Bus, log *logger.Logger) *Service {
	return &Service{store: store, pool: pool, bus: bus, log: log}
}

// CreateFromLead opens a follow-up inside the caller's transaction. Invoked
// by the lead orchestrator through its port, never over HTTP.
func (s *Service) CreateFromLead(ctx context.Context, tx db.DBTX, params repository.CreateParams) (repository.Followup, error) {
	return s.store.Create(ctx, tx, params)
}

// Complete marks a pending follow-up done. Completing an already-done
// follow-up is a no-op success: the original completion metadata stays
// untouched and no event is published.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, completedBy uuid.UUID, notes string) (repository.Followup, error) {
	fu, err := s.store.GetByID(ctx, s.pool, id)
	if err != nil {
		return repository.Followup{}, err
	}
	if fu.IsDone {
		return fu, nil
	}

	done, err := s.store.MarkDone(ctx, s.pool, id, completedBy, notes)
	if err != nil {
		return repository.Followup{}, err
	}

	s.bus.Publish(ctx, events.FollowupCompleted{
		BaseEvent:   events.NewBaseEvent(),
		FollowupID:  done.ID,
		LeadID:      done.LeadID,
		CompletedBy: completedBy,
	})
	return done, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Followup, error) {
	return s.store.GetByID(ctx, s.pool, id)
}

func (s *Service) List(ctx context.Context, filter repository.ListFilter) ([]repository.Followup, error) {
	return s.store.List(ctx, s.pool, filter)
}
