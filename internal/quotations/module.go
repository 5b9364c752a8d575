// Package quotations provides the quotation bounded context module:
// template instantiation, baseline copies and quotation trees.
package quotations

import (
	apphttp "studio_backend/internal/http"
	"studio_backend/internal/quotations/handler"
	"studio_backend/internal/quotations/repository"
	"studio_backend/internal/quotations/service"
	"studio_backend/platform/logger"
	"studio_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the quotations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the quotations module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "quotations"
}

// Service returns the quotations service for adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts quotation routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotations"))
}

var _ apphttp.Module = (*Module)(nil)
