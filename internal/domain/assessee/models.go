package assessee

import (
	"acr/internal/domain/appraisal"
	"acr/internal/domain/directory"
)

type Request struct {
	EvaluatorUserID int64
	AppraisalTypeID int64
	PeriodID        int64
}

// Assessee is an employee the evaluator must assess, with their most recent attempt
// under the requested type and period when one exists.
type Assessee struct {
	directory.Employee
	LastAttempt *appraisal.LastAttempt `json:"lastAttempt,omitempty"`
}
