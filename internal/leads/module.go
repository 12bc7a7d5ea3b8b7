// Package leads provides the lead lifecycle bounded context module.
package leads

import (
	"salesops_backend/internal/events"
	apphttp "salesops_backend/internal/http"
	"salesops_backend/internal/leads/handler"
	"salesops_backend/internal/leads/ports"
	"salesops_backend/internal/leads/repository"
	"salesops_backend/internal/leads/service"
	"salesops_backend/platform/db"
	"salesops_backend/platform/logger"
	"salesops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the cross-module side-effect ports the orchestrator drives.
// The adapters package provides the production implementations.
type Deps struct {
	Followups    ports.FollowupCreator
	Sales        ports.SaleRecorder
	Payments     ports.PaymentUpserter
	VendorOrders ports.VendorOrderUpserter
	Targets      ports.TargetAccumulator
	Audit        ports.AuditRecorder
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module.
func NewModule(pool *pgxpool.Pool, deps Deps, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New()
	orc := service.NewOrchestrator(
		db.NewTxRunner(pool), repo,
		deps.Followups, deps.Sales, deps.Payments, deps.VendorOrders,
		deps.Targets, deps.Audit, bus, log,
	)
	svc := service.NewService(orc, repo, pool, val)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/leads", m.handler.List)
	ctx.Protected.POST("/leads", m.handler.Create)
	ctx.Protected.GET("/leads/statuses", m.handler.Statuses)
	ctx.Protected.GET("/leads/:id", m.handler.Get)
	ctx.Protected.PUT("/leads/:id", m.handler.Update)
	ctx.Protected.GET("/leads/:id/history", m.handler.History)
	ctx.Protected.GET("/leads/:id/scheduled-followups", m.handler.ScheduledFollowups)
	ctx.Admin.DELETE("/leads/:id", m.handler.Delete)
}
