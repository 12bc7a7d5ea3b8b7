// Package service records who changed what across the other modules. Writes
// happen after the owning transaction commits and are best effort by
// contract: a failed audit write never rolls back business state.
package service

import (
	"context"

	"salesops_backend/internal/audit/repository"
	"salesops_backend/platform/db"
)

type Service struct {
	repo *repository.Repository
	pool db.DBTX
}

func New(repo *repository.Repository, pool db.DBTX) *Service {
	return &Service{repo: repo, pool: pool}
}

// Record appends one audit entry. Called by other modules through their
// ports after commit.
func (s *Service) Record(ctx context.Context, params repository.AppendParams) error {
	return s.repo.Append(ctx, s.pool, params)
}

func (s *Service) List(ctx context.Context, filter repository.ListFilter) ([]repository.Entry, error) {
	return s.repo.List(ctx, s.pool, filter)
}
