// Package service holds the vendor order workflow: the keyed upsert used by
// the lead orchestrator and the vendor-side status pipeline.
package service

import (
	"context"

	"salesops_backend/internal/vendororders/repository"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"

	"github.com/google/uuid"
)

var validOrderStatuses = map[string]bool{
	"placed":    true,
	"confirmed": true,
	"shipped":   true,
	"received":  true,
	"cancelled": true,
}

type Service struct {
	repo *repository.Repository
	pool db.DBTX
}

func New(repo *repository.Repository, pool db.DBTX) *Service {
	return &Service{repo: repo, pool: pool}
}

// Upsert creates or refreshes the (customer, product) order inside the
// caller's transaction. Called by the lead orchestrator through its port.
func (s *Service) Upsert(ctx context.Context, tx db.DBTX, params repository.UpsertParams) (uuid.UUID, string, bool, error) {
	return s.repo.Upsert(ctx, tx, params)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.VendorOrder, error) {
	return s.repo.GetByID(ctx, s.pool, id)
}

func (s *Service) List(ctx context.Context, filter repository.ListFilter) ([]repository.VendorOrder, error) {
	return s.repo.List(ctx, s.pool, filter)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (repository.VendorOrder, error) {
	if !validOrderStatuses[status] {
		return repository.VendorOrder{}, apperr.Validation("unknown order status").WithDetails(map[string]string{"status": status})
	}
	return s.repo.UpdateStatus(ctx, s.pool, id, status)
}
