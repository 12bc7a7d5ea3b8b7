// Package audit provides the audit trail bounded context module.
package audit

import (
	"salesops_backend/internal/audit/handler"
	"salesops_backend/internal/audit/repository"
	"salesops_backend/internal/audit/service"
	apphttp "salesops_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the audit bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the audit module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New()
	svc := service.New(repo, pool)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "audit"
}

// Service returns the service layer for the adapters package.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts audit routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/audit", m.handler.List)
}
