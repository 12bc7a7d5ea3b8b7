// Package service holds the sales workflow: idempotent creation from the
// lead orchestrator and the secondary fulfillment state machine.
package service

import (
	"context"

	"salesops_backend/internal/sales/repository"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
)

// Stages of the secondary fulfillment workflow. These are deliberately looser
// than lead statuses: a sale only tracks its own shipping pipeline.
var validStages = map[string]bool{
	"new":        true,
	"processing": true,
	"ordered":    true,
	"shipped":    true,
	"delivered":  true,
}

type Service struct {
	repo *repository.Repository
	pool db.DBTX
}

func New(repo *repository.Repository, pool db.DBTX) *Service {
	return &Service{repo: repo, pool: pool}
}

// RecordSale creates the sale inside the caller's transaction. Called by the
// lead orchestrator through its port; creation is idempotent per lead.
func (s *Service) RecordSale(ctx context.Context, tx db.DBTX, params repository.CreateParams) (uuid.UUID, bool, error) {
	return s.repo.CreateIdempotent(ctx, tx, params)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Sale, error) {
	return s.repo.GetByID(ctx, s.pool, id)
}

func (s *Service) GetByLead(ctx context.Context, leadID uuid.UUID) (repository.Sale, error) {
	return s.repo.GetByLeadID(ctx, s.pool, leadID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]repository.Sale, error) {
	return s.repo.List(ctx, s.pool, limit, offset)
}

func (s *Service) MarkOrderConfirmationSent(ctx context.Context, id uuid.UUID) (repository.Sale, error) {
	return s.repo.MarkOrderConfirmationSent(ctx, s.pool, id)
}

func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, stage string) (repository.Sale, error) {
	if !validStages[stage] {
		return repository.Sale{}, apperr.Validation("unknown stage").WithDetails(map[string]string{"stage": stage})
	}
	return s.repo.UpdateStage(ctx, s.pool, id, stage)
}

func (s *Service) MarkDeliveryConfirmationSent(ctx context.Context, id uuid.UUID) (repository.Sale, error) {
	return s.repo.MarkDeliveryConfirmationSent(ctx, s.pool, id)
}
