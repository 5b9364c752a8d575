package domain

import (
	"slices"

	"studio_backend/platform/apperr"
)

type stageRequirement struct {
	stage  Stage
	fields []string
}

// progressionRequirements is folded left to right: reaching a stage needs
// every field listed for it and for each stage before it.
var progressionRequirements = []stageRequirement{
	{StageQualified, []string{
		FieldPropertyCategory, FieldPropertyType, FieldPropertySubtype, FieldServiceType,
		FieldPropertyName, FieldTargetStartDate, FieldTargetEndDate,
	}},
	{StageRequirementDiscussion, []string{FieldCarpetArea, FieldUnitNumber, FieldBudgetRange}},
	{StageProposalDiscussion, []string{FieldChangeReason}},
	{StageWon, []string{
		FieldSelectedQuotationID, FieldWonAmount, FieldContractSignedDate,
		FieldExpectedProjectStart, FieldChangeReason,
	}},
}

// exitRequirements apply on their own; exits are not part of the progression.
var exitRequirements = map[Stage][]string{
	StageDisqualified: {FieldDisqualificationReason},
	StageLost:         {FieldLostReason, FieldLostNotes},
}

// RequiredFields returns the keys needed to enter stage, in policy order and
// without duplicates.
func RequiredFields(stage Stage) []string {
	if fields, ok := exitRequirements[stage]; ok {
		return slices.Clone(fields)
	}

	required := make([]string, 0, 16)
	for _, req := range progressionRequirements {
		for _, f := range req.fields {
			if !slices.Contains(required, f) {
				required = append(required, f)
			}
		}
		if req.stage == stage {
			return required
		}
	}
	return nil
}

// ValidationResult is the outcome of a transition check.
type ValidationResult struct {
	Required []string
	Missing  []string
}

// OK reports whether every required field is satisfied.
func (r ValidationResult) OK() bool {
	return len(r.Missing) == 0
}

// MissingLabels returns the missing fields by label.
func (r ValidationResult) MissingLabels() []string {
	return Labels(r.Missing)
}

// Err returns a MISSING_FIELDS error listing every gap, or nil.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return apperr.MissingFields(r.MissingLabels())
}

// ValidateTransition checks the edge and the cumulative field policy.
// requested overrides stored; see Merge. An illegal edge returns an
// INVALID_TRANSITION error and an empty result.
func ValidateTransition(from, to Stage, requested, stored Fields) (ValidationResult, error) {
	if !CanTransition(from, to) {
		return ValidationResult{}, apperr.InvalidTransition(string(from), string(to))
	}
	return CheckRequirements(to, requested, stored), nil
}

// CheckRequirements evaluates the field policy for to without looking at the
// stage graph.
func CheckRequirements(to Stage, requested, stored Fields) ValidationResult {
	merged := Merge(stored, requested)
	required := RequiredFields(to)
	missing := make([]string, 0)
	for _, key := range required {
		if !merged.Satisfied(key) {
			missing = append(missing, key)
		}
	}
	return ValidationResult{Required: required, Missing: missing}
}
