// Package payments provides the payment records bounded context module.
package payments

import (
	apphttp "salesops_backend/internal/http"
	"salesops_backend/internal/payments/handler"
	"salesops_backend/internal/payments/repository"
	"salesops_backend/internal/payments/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the payments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the payments module.
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
	return "payments"
}

// Service returns the service layer for the adapters package.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts payment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/payments", m.handler.List)
	ctx.Protected.GET("/payments/:id", m.handler.Get)
	ctx.Protected.GET("/payments/by-lead/:leadId", m.handler.GetByLead)
	ctx.Protected.PATCH("/payments/:id/dispute", m.handler.UpdateDispute)
}
