// Package service accumulates sale margins into matching targets and manages
// target CRUD for admins.
package service

import (
	"context"
	"time"

	"salesops_backend/internal/events"
	"salesops_backend/internal/targets/repository"
	"salesops_backend/platform/db"
	"salesops_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, tx db.DBTX, params repository.CreateParams) (repository.Target, error)
	GetByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (repository.Target, error)
	List(ctx context.Context, tx db.DBTX, limit, offset int) ([]repository.Target, error)
	ListActiveAt(ctx context.Context, tx db.DBTX, at time.Time) ([]repository.Target, error)
	Increment(ctx context.Context, tx db.DBTX, id uuid.UUID, amountCents int64) (int64, int64, error)
	Update(ctx context.Context, tx db.DBTX, id uuid.UUID, params repository.CreateParams) (repository.Target, error)
	Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error
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

// matches reports whether the target counts this agent's sale at this time.
// An empty assigned set counts every agent.
func matches(t repository.Target, agentID uuid.UUID, at time.Time) bool {
	if at.Before(t.PeriodStart) || at.After(t.PeriodEnd) {
		return false
	}
	if len(t.AssignedUserIDs) == 0 {
		return true
	}
	for _, id := range t.AssignedUserIDs {
		if id == agentID {
			return true
		}
	}
	return false
}

// Accumulate adds the margin to every matching active target. Increments are
// independent: one failing target does not block the others, and the caller
// gets the joined error. A target crossing its goal publishes TargetAchieved.
func (s *Service) Accumulate(ctx context.Context, agentID uuid.UUID, marginCents int64, now time.Time) error {
	if marginCents <= 0 {
		return nil
	}
	active, err := s.store.ListActiveAt(ctx, s.pool, now)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range active {
		if !matches(t, agentID, now) {
			continue
		}
		g.Go(func() error {
			before, after, err := s.store.Increment(gctx, s.pool, t.ID, marginCents)
			if err != nil {
				s.log.SideEffectError("target_increment", t.ID.String(), err)
				return err
			}
			if before < t.GoalAmountCents && after >= t.GoalAmountCents {
				s.bus.Publish(gctx, events.TargetAchieved{
					BaseEvent:     events.NewBaseEvent(),
					TargetID:      t.ID,
					Name:          t.Name,
					AchievedCents: after,
					GoalCents:     t.GoalAmountCents,
				})
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) Create(ctx context.Context, params repository.CreateParams) (repository.Target, error) {
	return s.store.Create(ctx, s.pool, params)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Target, error) {
	return s.store.GetByID(ctx, s.pool, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]repository.Target, error) {
	return s.store.List(ctx, s.pool, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params repository.CreateParams) (repository.Target, error) {
	return s.store.Update(ctx, s.pool, id, params)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, s.pool, id)
}
