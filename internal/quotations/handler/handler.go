package handler

import (
	"net/http"

	"studio_backend/internal/quotations/repository"
	"studio_backend/internal/quotations/service"
	"studio_backend/internal/quotations/transport"
	"studio_backend/platform/httpkit"
	"studio_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/from-template", h.CreateFromTemplate)
	rg.GET("/:id", h.GetTree)
}

func (h *Handler) CreateFromTemplate(c *gin.Context) {
	identity, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	var req transport.CreateFromTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Describe(err))
		return
	}

	result, err := h.svc.CreateFromTemplate(c.Request.Context(), service.CreateFromTemplateInput{
		TenantID:   tenantID,
		ActorID:    identity.UserID(),
		LeadID:     req.LeadID,
		TemplateID: req.TemplateID,
		Title:      req.Title,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.CreateFromTemplateResponse{
		Quotation: toQuotationResponse(result.Quotation),
		Summary: transport.MaterializeSummaryResponse{
			SpacesCreated:     result.Summary.SpacesCreated,
			ComponentsCreated: result.Summary.ComponentsCreated,
			LineItemsCreated:  result.Summary.LineItemsCreated,
		},
	})
}

func (h *Handler) GetTree(c *gin.Context) {
	_, tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	tree, err := h.svc.GetTree(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toTreeResponse(tree))
}

func toQuotationResponse(q repository.Quotation) transport.QuotationResponse {
	return transport.QuotationResponse{
		ID:                 q.ID,
		LeadID:             q.LeadID,
		ProjectID:          q.ProjectID,
		QuotationNumber:    q.QuotationNumber,
		Version:            q.Version,
		Title:              q.Title,
		Status:             q.Status,
		LockedForProjectID: q.LockedForProjectID,
		LockedAt:           q.LockedAt,
		SourceQuotationID:  q.SourceQuotationID,
		TemplateID:         q.TemplateID,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
}

func toTreeResponse(tree service.Tree) transport.QuotationTreeResponse {
	resp := transport.QuotationTreeResponse{
		QuotationResponse: toQuotationResponse(tree.Quotation),
		Spaces:            make([]transport.SpaceResponse, 0, len(tree.Spaces)),
		Unassigned:        toLineItems(tree.Unassigned),
	}
	for _, node := range tree.Spaces {
		space := transport.SpaceResponse{
			ID:           node.Space.ID,
			SpaceTypeID:  node.Space.SpaceTypeID,
			Name:         node.Space.Name,
			DisplayOrder: node.Space.DisplayOrder,
			Components:   make([]transport.ComponentResponse, 0, len(node.Components)),
			LineItems:    toLineItems(node.LineItems),
		}
		for _, comp := range node.Components {
			space.Components = append(space.Components, transport.ComponentResponse{
				ID:                 comp.Component.ID,
				ComponentTypeID:    comp.Component.ComponentTypeID,
				ComponentVariantID: comp.Component.ComponentVariantID,
				Name:               comp.Component.Name,
				DisplayOrder:       comp.Component.DisplayOrder,
				LineItems:          toLineItems(comp.LineItems),
			})
		}
		resp.Spaces = append(resp.Spaces, space)
	}
	return resp
}

func toLineItems(items []repository.LineItem) []transport.LineItemResponse {
	out := make([]transport.LineItemResponse, 0, len(items))
	for _, li := range items {
		out = append(out, transport.LineItemResponse{
			ID:           li.ID,
			CostItemID:   li.CostItemID,
			Name:         li.Name,
			UnitCode:     li.UnitCode,
			Rate:         li.Rate,
			Quantity:     nullDecimal(li.Quantity),
			Length:       nullDecimal(li.Length),
			Width:        nullDecimal(li.Width),
			Amount:       li.Amount,
			DisplayOrder: li.DisplayOrder,
		})
	}
	return out
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
