package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskBaselineAudit = "projects.baseline_audit"

type BaselineAuditPayload struct {
	TenantID            string `json:"tenantId"`
	LeadID              string `json:"leadId"`
	ProjectID           string `json:"projectId"`
	SourceQuotationID   string `json:"sourceQuotationId"`
	BaselineQuotationID string `json:"baselineQuotationId"`
}

func NewBaselineAuditTask(payload BaselineAuditPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBaselineAudit, data), nil
}

func ParseBaselineAuditPayload(task *asynq.Task) (BaselineAuditPayload, error) {
	var payload BaselineAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BaselineAuditPayload{}, err
	}
	return payload, nil
}
