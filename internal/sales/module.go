// Package sales provides the sales bounded context module.
package sales

import (
	apphttp "salesops_backend/internal/http"
	"salesops_backend/internal/sales/handler"
	"salesops_backend/internal/sales/repository"
	"salesops_backend/internal/sales/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the sales bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the sales module.
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
	return "sales"
}

// Service returns the service layer for the adapters package.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts sale routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/sales", m.handler.List)
	ctx.Protected.GET("/sales/:id", m.handler.Get)
	ctx.Protected.GET("/sales/by-lead/:leadId", m.handler.GetByLead)
	ctx.Protected.POST("/sales/:id/order-confirmation", m.handler.MarkOrderConfirmation)
	ctx.Protected.PATCH("/sales/:id/stage", m.handler.UpdateStage)
	ctx.Protected.POST("/sales/:id/delivery-confirmation", m.handler.MarkDeliveryConfirmation)
}
