package service

import (
	"strings"
	"time"

	"studio_backend/internal/pipeline/domain"
	"studio_backend/internal/pipeline/repository"
	"studio_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	dateFields    = []string{domain.FieldTargetStartDate, domain.FieldTargetEndDate, domain.FieldContractSignedDate, domain.FieldExpectedProjectStart}
	decimalFields = []string{domain.FieldWonAmount, domain.FieldCarpetArea}
	idFields      = []string{domain.FieldSelectedQuotationID}
)

// checkFieldFormats rejects supplied values that cannot be parsed into their
// column type. Blank values are left to the required-field policy.
func checkFieldFormats(requested domain.Fields) error {
	invalid := make([]string, 0)
	for _, key := range dateFields {
		if requested.Satisfied(key) && dateValue(requested, key) == nil {
			invalid = append(invalid, domain.Label(key))
		}
	}
	for _, key := range decimalFields {
		if requested.Satisfied(key) && decimalValue(requested, key) == nil {
			invalid = append(invalid, domain.Label(key))
		}
	}
	for _, key := range idFields {
		if requested.Satisfied(key) && uuidValue(requested, key) == nil {
			invalid = append(invalid, domain.Label(key))
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return apperr.Validation("some fields have an invalid format").
		WithDetails(map[string]interface{}{"invalidFields": invalid})
}

func stringValue(f domain.Fields, key string) *string {
	if !f.Satisfied(key) {
		return nil
	}
	v := strings.TrimSpace(f[key])
	return &v
}

func dateValue(f domain.Fields, key string) *time.Time {
	if !f.Satisfied(key) {
		return nil
	}
	raw := strings.TrimSpace(f[key])
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}

func decimalValue(f domain.Fields, key string) *decimal.Decimal {
	if !f.Satisfied(key) {
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(f[key]))
	if err != nil {
		return nil
	}
	return &d
}

func uuidValue(f domain.Fields, key string) *uuid.UUID {
	if !f.Satisfied(key) {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(f[key]))
	if err != nil {
		return nil
	}
	return &id
}

// storedFields flattens the persisted lead and property into the same key
// space as a transition request.
func storedFields(lead repository.Lead, property *repository.Property) domain.Fields {
	f := domain.Fields{}
	putString(f, domain.FieldServiceType, lead.ServiceType)
	putString(f, domain.FieldBudgetRange, lead.BudgetRange)
	putDate(f, domain.FieldTargetStartDate, lead.TargetStartDate)
	putDate(f, domain.FieldTargetEndDate, lead.TargetEndDate)
	putString(f, domain.FieldDisqualificationReason, lead.DisqualificationReason)
	putString(f, domain.FieldLostReason, lead.LostReason)
	putString(f, domain.FieldLostNotes, lead.LostNotes)
	putDate(f, domain.FieldContractSignedDate, lead.ContractSignedDate)
	putDate(f, domain.FieldExpectedProjectStart, lead.ExpectedProjectStart)
	if lead.WonAmount.Valid {
		f[domain.FieldWonAmount] = lead.WonAmount.Decimal.String()
	}
	if lead.WonQuotationID != nil {
		f[domain.FieldSelectedQuotationID] = lead.WonQuotationID.String()
	}

	if property != nil {
		putString(f, domain.FieldPropertyName, property.PropertyName)
		putString(f, domain.FieldPropertyCategory, property.PropertyCategory)
		putString(f, domain.FieldPropertyType, property.PropertyType)
		putString(f, domain.FieldPropertySubtype, property.PropertySubtype)
		putString(f, domain.FieldUnitNumber, property.UnitNumber)
		if property.CarpetArea.Valid {
			f[domain.FieldCarpetArea] = property.CarpetArea.Decimal.String()
		}
	}
	return f
}

func putString(f domain.Fields, key string, v *string) {
	if v != nil {
		f[key] = *v
	}
}

func putDate(f domain.Fields, key string, v *time.Time) {
	if v != nil {
		f[key] = v.Format(dateLayout)
	}
}
