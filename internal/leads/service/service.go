package service

import (
	"context"

	"salesops_backend/internal/leads/domain"
	"salesops_backend/internal/leads/repository"
	"salesops_backend/internal/leads/transport"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/db"
	"salesops_backend/platform/validator"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service is the HTTP-facing surface of the leads module: payload validation,
// orchestration delegation, and read queries.
type Service struct {
	orc      *Orchestrator
	repo     *repository.Repository
	pool     db.DBTX
	validate *validator.Validator
}

func NewService(orc *Orchestrator, repo *repository.Repository, pool db.DBTX, validate *validator.Validator) *Service {
	return &Service{
		orc:      orc,
		repo:     repo,
		pool:     pool,
		validate: validate,
	}
}

func (s *Service) CreateLead(ctx context.Context, actor Actor, req *transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if err := s.validateStruct(req); err != nil {
		return transport.LeadResponse{}, err
	}
	lead, err := s.orc.CreateLead(ctx, actor, req)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return transport.ToLeadResponse(lead), nil
}

func (s *Service) UpdateLead(ctx context.Context, id uuid.UUID, actor Actor, req *transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if err := s.validateStruct(req); err != nil {
		return transport.LeadResponse{}, err
	}
	lead, err := s.orc.UpdateLead(ctx, id, actor, req)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return transport.ToLeadResponse(lead), nil
}

func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, s.pool, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return transport.ToLeadResponse(lead), nil
}

func (s *Service) ListLeads(ctx context.Context, filter repository.LeadFilter) (transport.LeadListResponse, error) {
	leads, err := s.repo.List(ctx, s.pool, filter)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, transport.ToLeadResponse(lead))
	}
	return transport.LeadListResponse{Items: items}, nil
}

func (s *Service) GetHistory(ctx context.Context, id uuid.UUID) ([]transport.HistoryEntryResponse, error) {
	// Resolve the lead first so a bad id is NotFound, not an empty list.
	if _, err := s.repo.GetByID(ctx, s.pool, id); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListHistory(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	return transport.ToHistoryResponse(entries), nil
}

func (s *Service) GetScheduledFollowups(ctx context.Context, id uuid.UUID) ([]transport.ScheduledFollowupResponse, error) {
	if _, err := s.repo.GetByID(ctx, s.pool, id); err != nil {
		return nil, err
	}
	items, err := s.repo.ListScheduledFollowups(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ScheduledFollowupResponse, 0, len(items))
	for _, sf := range items {
		out = append(out, transport.ScheduledFollowupResponse{
			ID:           sf.ID,
			FollowupType: sf.FollowupType,
			ScheduledAt:  sf.ScheduledAt,
			Notes:        sf.Notes,
			IsDone:       sf.IsDone,
			CreatedAt:    sf.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) DeleteLead(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, s.pool, id)
}

// Statuses returns the known workflow statuses for UI dropdowns.
func (s *Service) Statuses() []string {
	out := []string{
		string(domain.StatusNew), string(domain.StatusAttemptedContact), string(domain.StatusContacted),
		string(domain.StatusQuoted), string(domain.StatusNegotiation), string(domain.StatusFollowUp),
		string(domain.StatusPaymentFollowUp), string(domain.StatusDeliveryFollowUp),
		string(domain.StatusSalePaymentDone), string(domain.StatusProductPurchased),
		string(domain.StatusShipped), string(domain.StatusDelivered), string(domain.StatusCompleted),
		string(domain.StatusRefundInitiated), string(domain.StatusRefunded), string(domain.StatusDispute),
		string(domain.StatusChargeback), string(domain.StatusCancelled), string(domain.StatusNotInterested),
		string(domain.StatusOutOfStock),
	}
	return out
}

func (s *Service) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs playgroundvalidator.ValidationErrors
	if ok := asValidationErrors(err, &fieldErrs); ok {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperr.Validation("invalid payload").WithDetails(details)
	}
	return apperr.Validation(err.Error())
}

func asValidationErrors(err error, target *playgroundvalidator.ValidationErrors) bool {
	ve, ok := err.(playgroundvalidator.ValidationErrors)
	if !ok {
		return false
	}
	*target = ve
	return true
}
