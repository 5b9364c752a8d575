package service

import (
	"context"
	"fmt"

	"studio_backend/internal/pipeline/domain"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/platform/logger"

	"github.com/google/uuid"
)

// UnknownCity fills the mandatory city of properties created from the
// sales flow, which never asks for an address.
const UnknownCity = "Unknown"

// PropertyResolution is the outcome of Resolve. Warning is set when the
// property write failed; the transition continues either way.
type PropertyResolution struct {
	PropertyID *uuid.UUID
	Warning    string
}

// Changed reports whether the resolved id differs from current.
func (r PropertyResolution) Changed(current *uuid.UUID) bool {
	if r.PropertyID == nil {
		return false
	}
	return current == nil || *current != *r.PropertyID
}

// PropertyResolver keeps the lead's property row in step with the
// property-bearing fields of a transition.
type PropertyResolver struct {
	store PropertyStore
	log   *logger.Logger
}

func NewPropertyResolver(store PropertyStore, log *logger.Logger) *PropertyResolver {
	return &PropertyResolver{store: store, log: log}
}

// Resolve updates or creates the property for lead from fields. Store
// failures are logged and reported as a warning, never as an error.
func (r *PropertyResolver) Resolve(ctx context.Context, lead repository.Lead, fields domain.Fields) PropertyResolution {
	params, supplied := propertyParams(fields)
	if !supplied {
		return PropertyResolution{PropertyID: lead.PropertyID}
	}

	log := r.log.WithContext(ctx)

	if lead.PropertyID != nil {
		if err := r.store.UpdateProperty(ctx, *lead.PropertyID, lead.OrganizationID, params); err != nil {
			log.Warn("property update failed", "leadId", lead.ID, "propertyId", *lead.PropertyID, "error", err)
			return PropertyResolution{
				PropertyID: lead.PropertyID,
				Warning:    fmt.Sprintf("property details could not be saved: %v", err),
			}
		}
		return PropertyResolution{PropertyID: lead.PropertyID}
	}

	id, err := r.store.CreateProperty(ctx, lead.OrganizationID, UnknownCity, params)
	if err != nil {
		log.Warn("property create failed", "leadId", lead.ID, "error", err)
		return PropertyResolution{Warning: fmt.Sprintf("property could not be created: %v", err)}
	}
	log.Info("property created for lead", "leadId", lead.ID, "propertyId", id)
	return PropertyResolution{PropertyID: &id}
}

func propertyParams(fields domain.Fields) (repository.PropertyParams, bool) {
	params := repository.PropertyParams{
		PropertyName:     stringValue(fields, domain.FieldPropertyName),
		PropertyCategory: stringValue(fields, domain.FieldPropertyCategory),
		PropertyType:     stringValue(fields, domain.FieldPropertyType),
		PropertySubtype:  stringValue(fields, domain.FieldPropertySubtype),
		UnitNumber:       stringValue(fields, domain.FieldUnitNumber),
		CarpetArea:       decimalValue(fields, domain.FieldCarpetArea),
	}
	supplied := params.PropertyName != nil || params.PropertyCategory != nil || params.PropertyType != nil ||
		params.PropertySubtype != nil || params.UnitNumber != nil || params.CarpetArea != nil
	return params, supplied
}
