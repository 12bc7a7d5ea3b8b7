// Package service exposes the payment record workflow: the per-lead upsert
// used by the lead orchestrator and the dispute/refund patch path.
package service

import (
	"context"

	"salesops_backend/internal/payments/repository"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
)

var validPaymentStatuses = map[string]bool{
	"pending":   true,
	"paid":      true,
	"disputed":  true,
	"refunding": true,
	"refunded":  true,
}

type Service struct {
	repo *repository.Repository
	pool db.DBTX
}

func New(repo *repository.Repository, pool db.DBTX) *Service {
	return &Service{repo: repo, pool: pool}
}

// Upsert creates or refreshes the lead's payment record inside the caller's
// transaction. Called by the lead orchestrator through its port.
func (s *Service) Upsert(ctx context.Context, tx db.DBTX, params repository.UpsertParams) (uuid.UUID, error) {
	return s.repo.Upsert(ctx, tx, params)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.PaymentRecord, error) {
	return s.repo.GetByID(ctx, s.pool, id)
}

func (s *Service) GetByLead(ctx context.Context, leadID uuid.UUID) (repository.PaymentRecord, error) {
	return s.repo.GetByLeadID(ctx, s.pool, leadID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]repository.PaymentRecord, error) {
	return s.repo.List(ctx, s.pool, limit, offset)
}

// UpdateDispute patches dispute and refund fields. Status, when supplied,
// must be one of the known payment statuses.
func (s *Service) UpdateDispute(ctx context.Context, id uuid.UUID, status, disputeReason, refundStatus *string) (repository.PaymentRecord, error) {
	if status != nil && !validPaymentStatuses[*status] {
		return repository.PaymentRecord{}, apperr.Validation("unknown payment status").WithDetails(map[string]string{"status": *status})
	}
	return s.repo.UpdateDispute(ctx, s.pool, id, status, disputeReason, refundStatus)
}
