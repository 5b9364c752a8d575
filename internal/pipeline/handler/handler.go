package handler

import (
	"net/http"
	"time"

	"studio_backend/internal/pipeline/domain"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/internal/pipeline/service"
	"studio_backend/internal/pipeline/transport"
	"studio_backend/platform/httpkit"
	"studio_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	dateLayout          = "2006-01-02"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, transitionLimit gin.HandlerFunc) {
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/stage-requirements", h.StageRequirements)
	rg.POST("/:id/transition", transitionLimit, h.Transition)
}

func (h *Handler) GetByID(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	view, err := h.svc.GetLead(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toLeadResponse(view.Lead, view.Property))
}

func (h *Handler) StageRequirements(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	to := c.Query("to")
	if to == "" {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "query parameter 'to' is required")
		return
	}

	preview, err := h.svc.StageRequirements(c.Request.Context(), tenantID, id, to)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.StageRequirementsResponse{
		From:          string(preview.From),
		To:            string(preview.To),
		Allowed:       preview.Allowed,
		Required:      preview.Required,
		MissingFields: preview.Missing,
	})
}

func (h *Handler) Transition(c *gin.Context) {
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Describe(err))
		return
	}

	var expectedEnd *time.Time
	if req.ExpectedProjectEnd != nil {
		t, err := time.Parse(dateLayout, *req.ExpectedProjectEnd)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "expected_project_end must be YYYY-MM-DD")
			return
		}
		expectedEnd = &t
	}

	actor := service.Actor{TenantID: tenantID, UserID: identity.UserID(), Roles: identity.Roles()}
	result, err := h.svc.Transition(c.Request.Context(), actor, id, service.TransitionRequest{
		ToStage:             req.ToStage,
		Fields:              req.Fields(),
		AssignedTo:          req.AssignedTo.Value,
		ProjectManagerID:    req.ProjectManagerID.Value,
		ProjectPriority:     req.ProjectPriority,
		ExpectedProjectEnd:  expectedEnd,
		SkipProjectCreation: req.SkipProjectCreation,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.TransitionResponse{
		Lead:           toLeadResponse(result.Lead, nil),
		ProjectID:      result.ProjectID,
		ProjectCreated: result.ProjectCreated,
		Warnings:       result.Warnings,
	}
	if result.Provisioning != nil {
		resp.Provisioning = toProvisioningResponse(*result.Provisioning)
	}
	httpkit.OK(c, resp)
}

func toLeadResponse(lead repository.Lead, property *repository.Property) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                     lead.ID,
		Stage:                  lead.Stage,
		ClientName:             lead.ClientName,
		AssignedTo:             lead.AssignedTo,
		AssignedAt:             lead.AssignedAt,
		AssignedBy:             lead.AssignedBy,
		ServiceType:            lead.ServiceType,
		BudgetRange:            lead.BudgetRange,
		TargetStartDate:        formatDate(lead.TargetStartDate),
		TargetEndDate:          formatDate(lead.TargetEndDate),
		PropertyID:             lead.PropertyID,
		DisqualificationReason: lead.DisqualificationReason,
		DisqualifiedAt:         lead.DisqualifiedAt,
		LostReason:             lead.LostReason,
		LostNotes:              lead.LostNotes,
		LostAt:                 lead.LostAt,
		WonQuotationID:         lead.WonQuotationID,
		ContractSignedDate:     formatDate(lead.ContractSignedDate),
		ExpectedProjectStart:   formatDate(lead.ExpectedProjectStart),
		WonAt:                  lead.WonAt,
		NextStages:             []string{},
		CreatedAt:              lead.CreatedAt,
		UpdatedAt:              lead.UpdatedAt,
	}
	if lead.WonAmount.Valid {
		amount := lead.WonAmount.Decimal
		resp.WonAmount = &amount
	}
	for _, s := range domain.NextStages(domain.Stage(lead.Stage)) {
		resp.NextStages = append(resp.NextStages, string(s))
	}
	if property != nil {
		p := transport.PropertyResponse{
			ID:               property.ID,
			PropertyName:     property.PropertyName,
			PropertyCategory: property.PropertyCategory,
			PropertyType:     property.PropertyType,
			PropertySubtype:  property.PropertySubtype,
			UnitNumber:       property.UnitNumber,
			AddressLine:      property.AddressLine,
			City:             property.City,
		}
		if property.CarpetArea.Valid {
			area := property.CarpetArea.Decimal
			p.CarpetArea = &area
		}
		resp.Property = &p
	}
	return resp
}

func toProvisioningResponse(report service.ProvisioningReport) *transport.ProvisioningResponse {
	return &transport.ProvisioningResponse{
		State:               string(report.State),
		Required:            report.Required,
		Attempts:            report.Attempts,
		BaselineQuotationID: report.BaselineQuotationID,
		QuotationLocked:     report.QuotationLocked,
		Linked:              report.Linked,
		SpacesCreated:       report.Copy.SpacesCreated,
		ComponentsCreated:   report.Copy.ComponentsCreated,
		LineItemsCreated:    report.Copy.LineItemsCreated,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}
