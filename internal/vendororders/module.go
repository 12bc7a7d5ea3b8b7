// Package vendororders provides the vendor order bounded context module.
package vendororders

import (
	apphttp "salesops_backend/internal/http"
	"salesops_backend/internal/vendororders/handler"
	"salesops_backend/internal/vendororders/repository"
	"salesops_backend/internal/vendororders/service"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the vendor orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the vendor orders module.
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
	return "vendororders"
}

// Service returns the service layer for the adapters package.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts vendor order routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/vendor-orders", m.handler.List)
	ctx.Protected.GET("/vendor-orders/:id", m.handler.Get)
	ctx.Protected.PATCH("/vendor-orders/:id/status", m.handler.UpdateStatus)
}
