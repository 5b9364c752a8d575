// Package projects provides the project bounded context module.
package projects

import (
	apphttp "studio_backend/internal/http"
	"studio_backend/internal/projects/handler"
	"studio_backend/internal/projects/repository"
	"studio_backend/internal/projects/service"
	"studio_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the projects bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the projects module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "projects"
}

// Service returns the projects service for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts project routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/projects"))
}

var _ apphttp.Module = (*Module)(nil)
