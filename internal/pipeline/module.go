// Package pipeline provides the lead pipeline bounded context module:
// stage transitions, required-field policy and won-deal provisioning.
package pipeline

import (
	"studio_backend/internal/events"
	apphttp "studio_backend/internal/http"
	"studio_backend/internal/pipeline/handler"
	"studio_backend/internal/pipeline/ports"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/internal/pipeline/service"
	"studio_backend/platform/config"
	"studio_backend/platform/logger"
	"studio_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProvisioningPorts are the collaborators of the won saga, supplied by
// internal/adapters.
type ProvisioningPorts struct {
	Authorizer ports.Authorizer
	Quotations ports.QuotationReader
	Settings   ports.SettingsReader
	Projects   ports.ProjectCreator
	Locker     ports.QuotationLocker
	Copier     ports.BaselineCopier
	Linker     ports.ProjectLinker
}

// Module is the pipeline bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates the pipeline module. Cross-module collaborators are
// attached later with SetProvisioningPorts.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// SetProvisioningPorts wires the capability check, quotation lookup and the
// provisioning saga.
func (m *Module) SetProvisioningPorts(p ProvisioningPorts, eventBus events.Bus, cfg config.ProvisioningConfig, log *logger.Logger) {
	m.service.SetAuthorizer(p.Authorizer)
	m.service.SetQuotationReader(p.Quotations)
	m.service.SetProvisioner(service.NewProvisioner(service.ProvisionerDeps{
		Settings: p.Settings,
		Projects: p.Projects,
		Locker:   p.Locker,
		Copier:   p.Copier,
		Linker:   p.Linker,
		Reverter: m.repo,
		EventBus: eventBus,
	}, cfg, log))
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// RegisterRoutes mounts lead routes on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leads := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leads, ctx.TransitionRateLimiter.RateLimit())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
