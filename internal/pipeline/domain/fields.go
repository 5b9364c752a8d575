package domain

import "strings"

// Field keys accepted by the transition operation. The keys double as the
// JSON names of the request body.
const (
	FieldPropertyCategory       = "property_category"
	FieldPropertyType           = "property_type"
	FieldPropertySubtype        = "property_subtype"
	FieldServiceType            = "service_type"
	FieldPropertyName           = "property_name"
	FieldTargetStartDate        = "target_start_date"
	FieldTargetEndDate          = "target_end_date"
	FieldCarpetArea             = "carpet_area"
	FieldUnitNumber             = "unit_number"
	FieldBudgetRange            = "budget_range"
	FieldChangeReason           = "change_reason"
	FieldSelectedQuotationID    = "selected_quotation_id"
	FieldWonAmount              = "won_amount"
	FieldContractSignedDate     = "contract_signed_date"
	FieldExpectedProjectStart   = "expected_project_start"
	FieldDisqualificationReason = "disqualification_reason"
	FieldLostReason             = "lost_reason"
	FieldLostNotes              = "lost_notes"
)

var fieldLabels = map[string]string{
	FieldPropertyCategory:       "Property category",
	FieldPropertyType:           "Property type",
	FieldPropertySubtype:        "Property subtype",
	FieldServiceType:            "Service type",
	FieldPropertyName:           "Property name",
	FieldTargetStartDate:        "Target start date",
	FieldTargetEndDate:          "Target end date",
	FieldCarpetArea:             "Carpet area",
	FieldUnitNumber:             "Unit number",
	FieldBudgetRange:            "Budget range",
	FieldChangeReason:           "Change note",
	FieldSelectedQuotationID:    "Selected quotation",
	FieldWonAmount:              "Won amount",
	FieldContractSignedDate:     "Contract signed date",
	FieldExpectedProjectStart:   "Expected project start",
	FieldDisqualificationReason: "Disqualification reason",
	FieldLostReason:             "Lost reason",
	FieldLostNotes:              "Lost notes",
}

// Label returns the human-readable name of a field key.
func Label(key string) string {
	if label, ok := fieldLabels[key]; ok {
		return label
	}
	return key
}

// Labels maps keys to labels, preserving order.
func Labels(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = Label(k)
	}
	return out
}

// Fields is a flat bag of field values keyed by field key. A key that is
// present with a blank value counts as supplied but empty.
type Fields map[string]string

// Has reports whether key is present, blank or not.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Satisfied reports whether key holds a non-blank value.
func (f Fields) Satisfied(key string) bool {
	return strings.TrimSpace(f[key]) != ""
}

// HasAny reports whether any of keys is present.
func (f Fields) HasAny(keys []string) bool {
	for _, k := range keys {
		if f.Has(k) {
			return true
		}
	}
	return false
}

// Merge overlays requested on top of stored. A requested key wins even when
// its value is blank.
func Merge(stored, requested Fields) Fields {
	merged := make(Fields, len(stored)+len(requested))
	for k, v := range stored {
		merged[k] = v
	}
	for k, v := range requested {
		merged[k] = v
	}
	return merged
}
