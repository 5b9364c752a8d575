package handler

import (
	"net/http"
	"time"

	"studio_backend/internal/projects/repository"
	"studio_backend/internal/projects/service"
	"studio_backend/internal/projects/transport"
	"studio_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
}

func (h *Handler) GetByID(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	project, err := h.svc.GetByID(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(project))
}

func toResponse(p repository.Project) transport.ProjectResponse {
	return transport.ProjectResponse{
		ID:                  p.ID,
		LeadID:              p.LeadID,
		ProjectNumber:       p.ProjectNumber,
		ProjectCategory:     p.ProjectCategory,
		QuotationID:         p.QuotationID,
		BaselineQuotationID: p.BaselineQuotationID,
		ProjectManagerID:    p.ProjectManagerID,
		Priority:            p.Priority,
		StartDate:           formatDate(p.StartDate),
		ExpectedEndDate:     formatDate(p.ExpectedEndDate),
		CreatedBy:           p.CreatedBy,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
