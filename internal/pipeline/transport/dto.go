package transport

import (
	"time"

	"studio_backend/internal/pipeline/domain"
	"studio_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// TransitionRequest is the flat field bag of a stage change. Field keys are
// snake_case to match the lead columns they feed.
type TransitionRequest struct {
	ToStage string `json:"to_stage" validate:"required,oneof=new qualified requirement_discussion proposal_discussion won lost disqualified"`

	PropertyCategory       FieldValue `json:"property_category" validate:"-"`
	PropertyType           FieldValue `json:"property_type" validate:"-"`
	PropertySubtype        FieldValue `json:"property_subtype" validate:"-"`
	ServiceType            FieldValue `json:"service_type" validate:"-"`
	PropertyName           FieldValue `json:"property_name" validate:"-"`
	TargetStartDate        FieldValue `json:"target_start_date" validate:"-"`
	TargetEndDate          FieldValue `json:"target_end_date" validate:"-"`
	CarpetArea             FieldValue `json:"carpet_area" validate:"-"`
	UnitNumber             FieldValue `json:"unit_number" validate:"-"`
	BudgetRange            FieldValue `json:"budget_range" validate:"-"`
	ChangeReason           FieldValue `json:"change_reason" validate:"-"`
	SelectedQuotationID    FieldValue `json:"selected_quotation_id" validate:"-"`
	WonAmount              FieldValue `json:"won_amount" validate:"-"`
	ContractSignedDate     FieldValue `json:"contract_signed_date" validate:"-"`
	ExpectedProjectStart   FieldValue `json:"expected_project_start" validate:"-"`
	DisqualificationReason FieldValue `json:"disqualification_reason" validate:"-"`
	LostReason             FieldValue `json:"lost_reason" validate:"-"`
	LostNotes              FieldValue `json:"lost_notes" validate:"-"`

	AssignedTo          OptionalUUID `json:"assigned_to" validate:"-"`
	ProjectManagerID    OptionalUUID `json:"project_manager_id" validate:"-"`
	ProjectPriority     *string      `json:"project_priority" validate:"omitempty,oneof=low medium high urgent"`
	ExpectedProjectEnd  *string      `json:"expected_project_end" validate:"omitempty,datetime=2006-01-02"`
	SkipProjectCreation bool         `json:"skip_project_creation"`
}

// Fields returns the present field keys and their raw values.
func (r TransitionRequest) Fields() domain.Fields {
	f := domain.Fields{}
	for key, v := range map[string]FieldValue{
		domain.FieldPropertyCategory:       r.PropertyCategory,
		domain.FieldPropertyType:           r.PropertyType,
		domain.FieldPropertySubtype:        r.PropertySubtype,
		domain.FieldServiceType:            r.ServiceType,
		domain.FieldPropertyName:           r.PropertyName,
		domain.FieldTargetStartDate:        r.TargetStartDate,
		domain.FieldTargetEndDate:          r.TargetEndDate,
		domain.FieldCarpetArea:             r.CarpetArea,
		domain.FieldUnitNumber:             r.UnitNumber,
		domain.FieldBudgetRange:            r.BudgetRange,
		domain.FieldChangeReason:           r.ChangeReason,
		domain.FieldSelectedQuotationID:    r.SelectedQuotationID,
		domain.FieldWonAmount:              r.WonAmount,
		domain.FieldContractSignedDate:     r.ContractSignedDate,
		domain.FieldExpectedProjectStart:   r.ExpectedProjectStart,
		domain.FieldDisqualificationReason: r.DisqualificationReason,
		domain.FieldLostReason:             r.LostReason,
		domain.FieldLostNotes:              r.LostNotes,
	} {
		if !v.Set {
			continue
		}
		if freeTextFields[key] {
			f[key] = sanitize.Text(v.Value)
			continue
		}
		f[key] = v.Value
	}
	return f
}

// freeTextFields are stored verbatim on the lead or its activity log.
var freeTextFields = map[string]bool{
	domain.FieldPropertyName:           true,
	domain.FieldUnitNumber:             true,
	domain.FieldChangeReason:           true,
	domain.FieldDisqualificationReason: true,
	domain.FieldLostReason:             true,
	domain.FieldLostNotes:              true,
}

// Response DTOs

type PropertyResponse struct {
	ID               uuid.UUID        `json:"id"`
	PropertyName     *string          `json:"propertyName,omitempty"`
	PropertyCategory *string          `json:"propertyCategory,omitempty"`
	PropertyType     *string          `json:"propertyType,omitempty"`
	PropertySubtype  *string          `json:"propertySubtype,omitempty"`
	UnitNumber       *string          `json:"unitNumber,omitempty"`
	CarpetArea       *decimal.Decimal `json:"carpetArea,omitempty"`
	AddressLine      *string          `json:"addressLine,omitempty"`
	City             string           `json:"city"`
}

type LeadResponse struct {
	ID                     uuid.UUID         `json:"id"`
	Stage                  string            `json:"stage"`
	ClientName             string            `json:"clientName"`
	AssignedTo             *uuid.UUID        `json:"assignedTo,omitempty"`
	AssignedAt             *time.Time        `json:"assignedAt,omitempty"`
	AssignedBy             *uuid.UUID        `json:"assignedBy,omitempty"`
	ServiceType            *string           `json:"serviceType,omitempty"`
	BudgetRange            *string           `json:"budgetRange,omitempty"`
	TargetStartDate        *string           `json:"targetStartDate,omitempty"`
	TargetEndDate          *string           `json:"targetEndDate,omitempty"`
	PropertyID             *uuid.UUID        `json:"propertyId,omitempty"`
	Property               *PropertyResponse `json:"property,omitempty"`
	DisqualificationReason *string           `json:"disqualificationReason,omitempty"`
	DisqualifiedAt         *time.Time        `json:"disqualifiedAt,omitempty"`
	LostReason             *string           `json:"lostReason,omitempty"`
	LostNotes              *string           `json:"lostNotes,omitempty"`
	LostAt                 *time.Time        `json:"lostAt,omitempty"`
	WonAmount              *decimal.Decimal  `json:"wonAmount,omitempty"`
	WonQuotationID         *uuid.UUID        `json:"wonQuotationId,omitempty"`
	ContractSignedDate     *string           `json:"contractSignedDate,omitempty"`
	ExpectedProjectStart   *string           `json:"expectedProjectStart,omitempty"`
	WonAt                  *time.Time        `json:"wonAt,omitempty"`
	NextStages             []string          `json:"nextStages"`
	CreatedAt              time.Time         `json:"createdAt"`
	UpdatedAt              time.Time         `json:"updatedAt"`
}

type ProvisioningResponse struct {
	State               string     `json:"state"`
	Required            bool       `json:"required"`
	Attempts            int        `json:"attempts"`
	BaselineQuotationID *uuid.UUID `json:"baselineQuotationId,omitempty"`
	QuotationLocked     bool       `json:"quotationLocked"`
	Linked              bool       `json:"linked"`
	SpacesCreated       int        `json:"spacesCreated"`
	ComponentsCreated   int        `json:"componentsCreated"`
	LineItemsCreated    int        `json:"lineItemsCreated"`
}

// TransitionResponse keeps the snake_case envelope keys clients already
// send in the request.
type TransitionResponse struct {
	Lead           LeadResponse          `json:"lead"`
	ProjectID      *uuid.UUID            `json:"project_id"`
	ProjectCreated bool                  `json:"project_created"`
	Warnings       []string              `json:"warnings"`
	Provisioning   *ProvisioningResponse `json:"provisioning,omitempty"`
}

type StageRequirementsResponse struct {
	From          string   `json:"from"`
	To            string   `json:"to"`
	Allowed       bool     `json:"allowed"`
	Required      []string `json:"required"`
	MissingFields []string `json:"missingFields"`
}
