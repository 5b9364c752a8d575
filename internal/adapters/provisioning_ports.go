package adapters

import (
	"studio_backend/internal/authz"
	"studio_backend/internal/pipeline"
	"studio_backend/internal/pipeline/ports"
	projectsvc "studio_backend/internal/projects/service"
	quotationsvc "studio_backend/internal/quotations/service"
	settingssvc "studio_backend/internal/settings/service"
)

// The authz and settings services already speak the pipeline's language.
var (
	_ ports.Authorizer     = (*authz.Service)(nil)
	_ ports.SettingsReader = (*settingssvc.Service)(nil)
)

// NewProvisioningPorts assembles the pipeline collaborators from the other
// modules' services.
func NewProvisioningPorts(authorizer *authz.Service, settings *settingssvc.Service, quotations *quotationsvc.Service, projects *projectsvc.Service) pipeline.ProvisioningPorts {
	quotes := NewQuotationPortsAdapter(quotations)
	proj := NewProjectPortsAdapter(projects)
	return pipeline.ProvisioningPorts{
		Authorizer: authorizer,
		Quotations: quotes,
		Settings:   settings,
		Projects:   proj,
		Locker:     quotes,
		Copier:     quotes,
		Linker:     proj,
	}
}
