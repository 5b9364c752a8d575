package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studio_backend/internal/events"
	"studio_backend/internal/pipeline/domain"
	"studio_backend/internal/pipeline/ports"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/platform/apperr"
	"studio_backend/platform/config"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

// SagaState is the furthest point the provisioning saga reached.
type SagaState string

const (
	SagaNotStarted      SagaState = "not_started"
	SagaProjectCreated  SagaState = "project_created"
	SagaQuotationLocked SagaState = "quotation_locked"
	SagaBaselineCopied  SagaState = "baseline_copied"
	SagaLinked          SagaState = "linked"
	SagaDone            SagaState = "done"
	SagaRolledBack      SagaState = "rolled_back"
	SagaRevertFailed    SagaState = "revert_failed"
)

const (
	causeProjectNumberCollision = "PROJECT_NUMBER_COLLISION"
	causeStoreError             = "STORE_ERROR"
)

// ProvisionInput carries what the saga needs from the committed won
// transition.
type ProvisionInput struct {
	TenantID         uuid.UUID
	ActorID          uuid.UUID
	LeadID           uuid.UUID
	PreviousStage    string
	ServiceType      string
	QuotationID      uuid.UUID
	ProjectManagerID *uuid.UUID
	Priority         *string
	StartDate        *time.Time
	ExpectedEndDate  *time.Time
}

// ProvisioningReport describes a saga run.
type ProvisioningReport struct {
	Required            bool
	State               SagaState
	Attempts            int
	ProjectID           *uuid.UUID
	BaselineQuotationID *uuid.UUID
	QuotationLocked     bool
	Linked              bool
	Copy                ports.BaselineCopyResult
	Warnings            []string
}

// ProvisionerDeps groups the saga collaborators.
type ProvisionerDeps struct {
	Settings ports.SettingsReader
	Projects ports.ProjectCreator
	Locker   ports.QuotationLocker
	Copier   ports.BaselineCopier
	Linker   ports.ProjectLinker
	Reverter StageReverter
	EventBus events.Bus
}

// Provisioner runs the won-transition saga: create project, lock the
// quotation, copy the baseline and link it, reverting the lead stage when
// a hard step fails.
type Provisioner struct {
	deps        ProvisionerDeps
	log         *logger.Logger
	maxAttempts int
	backoff     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewProvisioner(deps ProvisionerDeps, cfg config.ProvisioningConfig, log *logger.Logger) *Provisioner {
	attempts := cfg.GetProjectCreateMaxAttempts()
	if attempts < 1 {
		attempts = 1
	}
	return &Provisioner{
		deps:        deps,
		log:         log,
		maxAttempts: attempts,
		backoff:     cfg.GetProjectCreateBackoff(),
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Provision runs the saga. The returned error is always a
// PROJECT_CREATION_FAILED apperr; its details tell whether the lead stage
// was reverted.
func (p *Provisioner) Provision(ctx context.Context, in ProvisionInput) (ProvisioningReport, error) {
	report := ProvisioningReport{State: SagaNotStarted}
	leadID := in.LeadID.String()
	log := p.log.WithContext(ctx)

	enabled, err := p.deps.Settings.AutoCreateProjectOnWon(ctx, in.TenantID)
	if err != nil {
		log.SagaWarning("settings", leadID, err)
		enabled = true
	}
	if !enabled {
		log.SagaStep("skipped", leadID, slog.String("reason", "auto_create_project_on_won disabled"))
		return report, nil
	}
	report.Required = true

	category := domain.ProjectCategory(in.ServiceType)
	quotationID := in.QuotationID
	projectID, err := p.createProject(ctx, ports.CreateProjectInput{
		TenantID:         in.TenantID,
		LeadID:           in.LeadID,
		ActorID:          in.ActorID,
		Category:         category,
		QuotationID:      &quotationID,
		ProjectManagerID: in.ProjectManagerID,
		Priority:         in.Priority,
		StartDate:        in.StartDate,
		ExpectedEndDate:  in.ExpectedEndDate,
	}, &report)
	if err != nil {
		return p.compensate(ctx, in, report, err)
	}

	// The project exists; finish or compensate regardless of the caller.
	ctx = context.WithoutCancel(ctx)
	report.ProjectID = &projectID
	report.State = SagaProjectCreated
	log.SagaStep(string(SagaProjectCreated), leadID,
		slog.String("project_id", projectID.String()), slog.Int("attempt", report.Attempts))

	if err := p.deps.Locker.LockForProject(ctx, in.TenantID, in.QuotationID, projectID); err != nil {
		log.SagaWarning("lock_quotation", leadID, err, slog.String("project_id", projectID.String()))
		report.Warnings = append(report.Warnings, fmt.Sprintf("quotation was not locked: %v", err))
	} else {
		report.QuotationLocked = true
		report.State = SagaQuotationLocked
		log.SagaStep(string(SagaQuotationLocked), leadID, slog.String("project_id", projectID.String()))
	}

	copyResult, err := p.deps.Copier.CopyBaseline(ctx, ports.BaselineCopyInput{
		TenantID:          in.TenantID,
		SourceQuotationID: in.QuotationID,
		ProjectID:         projectID,
		ActorID:           in.ActorID,
	})
	if err != nil {
		return p.compensate(ctx, in, report, err)
	}
	baselineID := copyResult.BaselineQuotationID
	report.Copy = copyResult
	report.BaselineQuotationID = &baselineID
	report.State = SagaBaselineCopied
	log.SagaStep(string(SagaBaselineCopied), leadID,
		slog.String("project_id", projectID.String()),
		slog.String("baseline_quotation_id", baselineID.String()),
		slog.Int("spaces", copyResult.SpacesCreated),
		slog.Int("components", copyResult.ComponentsCreated),
		slog.Int("line_items", copyResult.LineItemsCreated),
	)

	if err := p.deps.Linker.LinkBaseline(ctx, in.TenantID, projectID, baselineID); err != nil {
		log.SagaWarning("link_baseline", leadID, err, slog.String("project_id", projectID.String()))
		report.Warnings = append(report.Warnings, fmt.Sprintf("project was not linked to its baseline quotation: %v", err))
	} else {
		report.Linked = true
		report.State = SagaLinked
		log.SagaStep(string(SagaLinked), leadID, slog.String("project_id", projectID.String()))
	}

	report.State = SagaDone
	log.SagaStep(string(SagaDone), leadID, slog.String("project_id", projectID.String()))

	p.deps.EventBus.Publish(ctx, events.ProjectProvisioned{
		BaseEvent:           events.NewBaseEvent(),
		LeadID:              in.LeadID,
		OrganizationID:      in.TenantID,
		ProjectID:           projectID,
		SourceQuotationID:   in.QuotationID,
		BaselineQuotationID: baselineID,
		QuotationLocked:     report.QuotationLocked,
		Linked:              report.Linked,
	})

	return report, nil
}

// createProject re-invokes the full creation call on number collisions,
// doubling the backoff after each one.
func (p *Provisioner) createProject(ctx context.Context, input ports.CreateProjectInput, report *ProvisioningReport) (uuid.UUID, error) {
	log := p.log.WithContext(ctx)
	delay := p.backoff

	for attempt := 1; ; attempt++ {
		report.Attempts = attempt
		projectID, err := p.deps.Projects.CreateProjectFromLead(ctx, input)
		if err == nil {
			return projectID, nil
		}
		if !errors.Is(err, ports.ErrProjectNumberCollision) {
			return uuid.Nil, err
		}
		if attempt >= p.maxAttempts {
			return uuid.Nil, fmt.Errorf("project number still colliding after %d attempts: %w", attempt, err)
		}

		log.SagaWarning("create_project", input.LeadID.String(), err,
			slog.Int("attempt", attempt), slog.Duration("backoff", delay))
		if err := p.sleep(ctx, delay); err != nil {
			return uuid.Nil, err
		}
		delay *= 2
	}
}

func (p *Provisioner) compensate(ctx context.Context, in ProvisionInput, report ProvisioningReport, cause error) (ProvisioningReport, error) {
	ctx = context.WithoutCancel(ctx)
	log := p.log.WithContext(ctx)

	attrs := []any{
		"leadId", in.LeadID,
		"failedAfter", report.State,
		"attempts", report.Attempts,
		"error", cause,
	}
	if report.ProjectID != nil {
		// The project row is left in place; it is not deleted by compensation.
		attrs = append(attrs, "orphanProjectId", *report.ProjectID)
	}
	log.Error("provisioning failed, reverting lead stage", attrs...)

	if err := p.revertStage(ctx, in); err != nil {
		report.State = SagaRevertFailed
		log.Error("lead stage revert failed, lead left in won",
			"leadId", in.LeadID, "restoreTo", in.PreviousStage, "error", err)
		return report, revertFailed(cause, err)
	}
	report.State = SagaRolledBack

	p.deps.EventBus.Publish(ctx, events.ProvisioningRolledBack{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         in.LeadID,
		OrganizationID: in.TenantID,
		RestoredStage:  in.PreviousStage,
		ProjectID:      report.ProjectID,
		Cause:          cause.Error(),
	})

	return report, provisioningFailed(cause, in.PreviousStage)
}

// revertStage retries the revert with the project creation backoff. A
// conflict means the lead already left won and is not retried.
func (p *Provisioner) revertStage(ctx context.Context, in ProvisionInput) error {
	delay := p.backoff
	for attempt := 1; ; attempt++ {
		err := p.deps.Reverter.RevertStage(ctx, in.LeadID, in.TenantID, string(domain.StageWon), in.PreviousStage)
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrStageConflict) || attempt >= p.maxAttempts {
			return fmt.Errorf("revert after %d attempts: %w", attempt, err)
		}
		p.log.WithContext(ctx).SagaWarning("revert_stage", in.LeadID.String(), err,
			slog.Int("attempt", attempt), slog.Duration("backoff", delay))
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}

func causeCodeOf(cause error) string {
	if code := apperr.GetCode(cause); code != "" {
		return code
	}
	if errors.Is(cause, ports.ErrProjectNumberCollision) {
		return causeProjectNumberCollision
	}
	return causeStoreError
}

func provisioningFailed(cause error, restoredStage string) error {
	return apperr.Wrap(apperr.KindBadRequest, "project provisioning failed, lead stage was reverted", cause).
		WithCode(apperr.CodeProjectCreationFailed).
		WithDetails(map[string]interface{}{
			"cause":         cause.Error(),
			"causeCode":     causeCodeOf(cause),
			"reverted":      true,
			"restoredStage": restoredStage,
		})
}

func revertFailed(cause, revertErr error) error {
	return apperr.Wrap(apperr.KindInternal, "project provisioning failed and the lead stage could not be reverted", cause).
		WithCode(apperr.CodeProjectCreationFailed).
		WithDetails(map[string]interface{}{
			"cause":        cause.Error(),
			"causeCode":    causeCodeOf(cause),
			"reverted":     false,
			"currentStage": string(domain.StageWon),
			"revertError":  revertErr.Error(),
		})
}
