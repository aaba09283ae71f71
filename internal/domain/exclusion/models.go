package exclusion

import "time"

// Record removes one employee from an evaluator's list for (period, type).
type Record struct {
	ID              int64     `json:"id"`
	OwnerUserID     int64     `json:"ownerUserId"`
	PeriodID        int64     `json:"periodId"`
	AppraisalTypeID int64     `json:"appraisalTypeId"`
	EmployeeID      int64     `json:"employeeId"`
	EmployeeName    string    `json:"employeeName,omitempty"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
