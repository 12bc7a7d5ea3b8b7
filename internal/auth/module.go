// Package auth provides the authentication bounded context module.
package auth

import (
	"salesops_backend/internal/auth/handler"
	"salesops_backend/internal/auth/repository"
	"salesops_backend/internal/auth/service"
	apphttp "salesops_backend/internal/http"
	"salesops_backend/platform/config"
	"salesops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator) *Module {
	repo := repository.New()
	svc := service.New(repo, pool, cfg)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes. Login is public; the rest sit behind
// the auth middleware.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/auth/login", m.handler.Login)
	ctx.Protected.GET("/auth/me", m.handler.Me)
	ctx.Protected.GET("/users/agents", m.handler.ListAgents)
}
