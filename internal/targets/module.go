// Package targets provides the sales target bounded context module.
package targets

import (
	"salesops_backend/internal/events"
	apphttp "salesops_backend/internal/http"
	"salesops_backend/internal/targets/handler"
	"salesops_backend/internal/targets/repository"
	"salesops_backend/internal/targets/service"
	"salesops_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the targets bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the targets module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New()
	svc := service.New(repo, pool, bus, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "targets"
}

// Service returns the service layer for the adapters package.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts target routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/targets", m.handler.List)
	ctx.Protected.GET("/targets/:id", m.handler.Get)
	ctx.Admin.POST("/targets", m.handler.Create)
	ctx.Admin.PUT("/targets/:id", m.handler.Update)
	ctx.Admin.DELETE("/targets/:id", m.handler.Delete)
}
