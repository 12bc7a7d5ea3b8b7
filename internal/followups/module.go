// Package followups provides the follow-up bounded context module.
package followups

import (
	"salesops_backend/internal/events"
	"salesops_backend/internal/followups/handler"
	"salesops_backend/internal/followups/repository"
	"salesops_backend/internal/followups/service"
	apphttp "salesops_backend/internal/http"
	"salesops_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the follow-ups bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the follow-ups module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New()
	svc := service.New(repo, pool, bus, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "followups"
}

// Service returns the service layer for the adapters package.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for the reminder worker.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts follow-up routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/followups", m.handler.List)
	ctx.Protected.GET("/followups/:id", m.handler.Get)
	ctx.Protected.POST("/followups/:id/complete", m.handler.Complete)
}
