package domain

import "slices"

// PropertyFields are the keys persisted on the property row.
var PropertyFields = []string{
	FieldPropertyName,
	FieldPropertyCategory,
	FieldPropertyType,
	FieldPropertySubtype,
	FieldUnitNumber,
	FieldCarpetArea,
}

// leadColumns are the keys persisted on the lead row.
var leadColumns = []string{
	FieldServiceType,
	FieldBudgetRange,
	FieldTargetStartDate,
	FieldTargetEndDate,
	FieldSelectedQuotationID,
	FieldWonAmount,
	FieldContractSignedDate,
	FieldExpectedProjectStart,
	FieldDisqualificationReason,
	FieldLostReason,
	FieldLostNotes,
}

// LeadProjection returns the lead-row keys written when entering stage: the
// lead-level subset of the stage's required fields. Anything else in the
// request is ignored by the lead update.
func LeadProjection(stage Stage) []string {
	out := make([]string, 0, len(leadColumns))
	for _, key := range RequiredFields(stage) {
		if slices.Contains(leadColumns, key) {
			out = append(out, key)
		}
	}
	return out
}

// ProjectCategory derives the project category from the lead's service type.
func ProjectCategory(serviceType string) string {
	if serviceType == "modular" {
		return "modular"
	}
	return "turnkey"
}
