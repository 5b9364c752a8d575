// Package service implements the lead transition use case: validation,
// property resolution, the guarded lead update and, for won leads, the
// provisioning saga.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studio_backend/internal/events"
	"studio_backend/internal/pipeline/domain"
	"studio_backend/internal/pipeline/ports"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/platform/apperr"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

const quotationStatusApproved = "approved"

// Actor is the authenticated caller of a pipeline operation.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Roles    []string
}

// TransitionRequest is a stage change request. Fields holds only the keys
// that were present in the request body.
type TransitionRequest struct {
	ToStage             string
	Fields              domain.Fields
	AssignedTo          *uuid.UUID
	ProjectManagerID    *uuid.UUID
	ProjectPriority     *string
	ExpectedProjectEnd  *time.Time
	SkipProjectCreation bool
}

type TransitionResult struct {
	Lead           repository.Lead
	ProjectID      *uuid.UUID
	ProjectCreated bool
	Warnings       []string
	Provisioning   *ProvisioningReport
}

// LeadView is a lead with its property.
type LeadView struct {
	Lead     repository.Lead
	Property *repository.Property
}

// RequirementsPreview lists what a lead still needs to enter a stage.
type RequirementsPreview struct {
	From     domain.Stage
	To       domain.Stage
	Allowed  bool
	Required []string
	Missing  []string
}

// Service orchestrates lead stage transitions.
type Service struct {
	store       Store
	resolver    *PropertyResolver
	mutator     *LeadMutator
	provisioner *Provisioner
	authorizer  ports.Authorizer
	quotes      ports.QuotationReader
	log         *logger.Logger
}

// New creates the pipeline service. Authorizer, quotation reader and
// provisioner are injected afterwards by the composition root.
func New(store Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		resolver: NewPropertyResolver(store, log),
		mutator:  NewLeadMutator(store, eventBus, log),
		log:      log,
	}
}

// SetAuthorizer injects the capability check used for won transitions.
func (s *Service) SetAuthorizer(authorizer ports.Authorizer) {
	s.authorizer = authorizer
}

// SetQuotationReader injects the quotation lookup used for eligibility.
func (s *Service) SetQuotationReader(quotes ports.QuotationReader) {
	s.quotes = quotes
}

// SetProvisioner injects the won-transition saga.
func (s *Service) SetProvisioner(provisioner *Provisioner) {
	s.provisioner = provisioner
}

// GetLead returns the lead with its property.
func (s *Service) GetLead(ctx context.Context, tenantID, leadID uuid.UUID) (LeadView, error) {
	lead, property, err := s.load(ctx, tenantID, leadID)
	if err != nil {
		return LeadView{}, err
	}
	return LeadView{Lead: lead, Property: property}, nil
}

// StageRequirements previews the required and missing fields for moving
// the lead to target.
func (s *Service) StageRequirements(ctx context.Context, tenantID, leadID uuid.UUID, target string) (RequirementsPreview, error) {
	to, ok := domain.ParseStage(target)
	if !ok {
		return RequirementsPreview{}, apperr.Validation(fmt.Sprintf("unknown stage %q", target))
	}
	lead, property, err := s.load(ctx, tenantID, leadID)
	if err != nil {
		return RequirementsPreview{}, err
	}

	from := domain.Stage(lead.Stage)
	result := domain.CheckRequirements(to, nil, storedFields(lead, property))
	return RequirementsPreview{
		From:     from,
		To:       to,
		Allowed:  domain.CanTransition(from, to),
		Required: domain.Labels(result.Required),
		Missing:  result.MissingLabels(),
	}, nil
}

// Transition moves a lead to req.ToStage. Checks run in order: stage graph,
// won capability, quotation eligibility, required fields. Nothing is
// written until all of them pass.
func (s *Service) Transition(ctx context.Context, actor Actor, leadID uuid.UUID, req TransitionRequest) (TransitionResult, error) {
	to, ok := domain.ParseStage(req.ToStage)
	if !ok {
		return TransitionResult{}, apperr.Validation(fmt.Sprintf("unknown stage %q", req.ToStage))
	}
	requested := req.Fields
	if requested == nil {
		requested = domain.Fields{}
	}

	lead, property, err := s.load(ctx, actor.TenantID, leadID)
	if err != nil {
		return TransitionResult{}, err
	}
	from := domain.Stage(lead.Stage)
	if !domain.CanTransition(from, to) {
		return TransitionResult{}, apperr.InvalidTransition(string(from), string(to))
	}

	stored := storedFields(lead, property)

	if to == domain.StageWon {
		if err := s.authorizeWon(ctx, actor); err != nil {
			return TransitionResult{}, err
		}
		if err := s.checkQuotationEligibility(ctx, actor.TenantID, lead.ID, domain.Merge(stored, requested)); err != nil {
			return TransitionResult{}, err
		}
		if !req.SkipProjectCreation && s.provisioner == nil {
			return TransitionResult{}, apperr.Internal("project provisioning is not configured")
		}
	}

	validation, err := domain.ValidateTransition(from, to, requested, stored)
	if err != nil {
		return TransitionResult{}, err
	}
	if err := validation.Err(); err != nil {
		return TransitionResult{}, err
	}
	if err := checkFieldFormats(requested); err != nil {
		return TransitionResult{}, err
	}

	resolution := s.resolver.Resolve(ctx, lead, requested)
	result := TransitionResult{Warnings: []string{}}
	if resolution.Warning != "" {
		result.Warnings = append(result.Warnings, resolution.Warning)
	}

	updated, err := s.mutator.Apply(ctx, StageChange{
		Lead:       lead,
		To:         to,
		Actor:      actor,
		Requested:  requested,
		AssignedTo: req.AssignedTo,
		Property:   resolution,
	})
	if err != nil {
		return TransitionResult{}, err
	}
	result.Lead = updated

	if to != domain.StageWon {
		return result, nil
	}
	if req.SkipProjectCreation {
		s.mutator.AnnounceWon(ctx, actor, updated)
		return result, nil
	}

	report, err := s.provisioner.Provision(ctx, ProvisionInput{
		TenantID:         actor.TenantID,
		ActorID:          actor.UserID,
		LeadID:           updated.ID,
		PreviousStage:    string(from),
		ServiceType:      deref(updated.ServiceType),
		QuotationID:      *updated.WonQuotationID,
		ProjectManagerID: req.ProjectManagerID,
		Priority:         req.ProjectPriority,
		StartDate:        updated.ExpectedProjectStart,
		ExpectedEndDate:  req.ExpectedProjectEnd,
	})
	if err != nil {
		return TransitionResult{}, err
	}

	s.mutator.AnnounceWon(ctx, actor, updated)

	result.Provisioning = &report
	result.Warnings = append(result.Warnings, report.Warnings...)
	if report.State == SagaDone {
		result.ProjectID = report.ProjectID
		result.ProjectCreated = true
	}
	return result, nil
}

func (s *Service) load(ctx context.Context, tenantID, leadID uuid.UUID) (repository.Lead, *repository.Property, error) {
	lead, err := s.store.GetLead(ctx, leadID, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, nil, apperr.NotFound("lead not found")
	}
	if err != nil {
		return repository.Lead{}, nil, fmt.Errorf("load lead: %w", err)
	}
	if lead.PropertyID == nil {
		return lead, nil, nil
	}

	property, err := s.store.GetProperty(ctx, *lead.PropertyID, tenantID)
	if errors.Is(err, repository.ErrPropertyNotFound) {
		return lead, nil, nil
	}
	if err != nil {
		return repository.Lead{}, nil, fmt.Errorf("load property: %w", err)
	}
	return lead, &property, nil
}

func (s *Service) authorizeWon(ctx context.Context, actor Actor) error {
	if s.authorizer == nil {
		return apperr.Forbidden("you are not allowed to close won deals")
	}
	allowed, err := s.authorizer.HasCapability(ctx, actor.TenantID, actor.UserID, actor.Roles, ports.CapabilityCloseWonDeals)
	if err != nil {
		return fmt.Errorf("check close won capability: %w", err)
	}
	if !allowed {
		return apperr.Forbidden("you are not allowed to close won deals")
	}
	return nil
}

// checkQuotationEligibility requires the selected quotation, when given, to
// belong to the lead and be approved.
func (s *Service) checkQuotationEligibility(ctx context.Context, tenantID, leadID uuid.UUID, fields domain.Fields) error {
	if !fields.Satisfied(domain.FieldSelectedQuotationID) {
		return nil
	}
	quotationID := uuidValue(fields, domain.FieldSelectedQuotationID)
	if quotationID == nil {
		return apperr.IneligibleQuotation("selected quotation id is not valid")
	}
	if s.quotes == nil {
		return apperr.Internal("quotation lookup is not configured")
	}

	quotation, err := s.quotes.GetQuotationSummary(ctx, tenantID, *quotationID)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.IneligibleQuotation("selected quotation does not exist")
	}
	if err != nil {
		return fmt.Errorf("load selected quotation: %w", err)
	}
	if quotation.LeadID != leadID {
		return apperr.IneligibleQuotation("selected quotation belongs to another lead")
	}
	if quotation.Status != quotationStatusApproved {
		return apperr.IneligibleQuotation(fmt.Sprintf("selected quotation must be approved, it is %s", quotation.Status))
	}
	return nil
}
