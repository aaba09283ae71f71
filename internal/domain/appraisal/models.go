package appraisal

import (
	"fmt"
	"time"
)

// AttemptKey identifies the sequence of attempts for one employee under one
// appraisal type within a period.
type AttemptKey struct {
	PeriodID        int64 `json:"periodId"`
	AppraisalTypeID int64 `json:"appraisalTypeId"`
	EmployeeID      int64 `json:"employeeId"`
}

func (k AttemptKey) String() string {
	return fmt.Sprintf("attempt:%d:%d:%d", k.PeriodID, k.AppraisalTypeID, k.EmployeeID)
}

func (k AttemptKey) Valid() bool {
	return k.PeriodID > 0 && k.AppraisalTypeID > 0 && k.EmployeeID > 0
}

type ItemScore struct {
	ItemID        int64 `json:"itemId"`
	MaxScore      int   `json:"maxScore"`
	ObtainedScore int   `json:"obtainedScore"`
}

type Total struct {
	PeriodID        int64     `json:"periodId"`
	AppraisalTypeID int64     `json:"appraisalTypeId"`
	EmployeeID      int64     `json:"employeeId"`
	AttemptNo       int       `json:"attemptNo"`
	InstituteID     int64     `json:"instituteId"`
	JobCategoryID   int64     `json:"jobCategoryId"`
	MaxScore        float64   `json:"maxScore"`
	ObtainedScore   float64   `json:"obtainedScore"`
	Remarks         string    `json:"remarks,omitempty"`
	RecordedBy      int64     `json:"recordedBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (t Total) Key() AttemptKey {
	return AttemptKey{PeriodID: t.PeriodID, AppraisalTypeID: t.AppraisalTypeID, EmployeeID: t.EmployeeID}
}

type LastAttempt struct {
	AttemptNo     int       `json:"attemptNo"`
	CreatedAt     time.Time `json:"createdAt"`
	ObtainedScore float64   `json:"obtainedScore"`
	MaxScore      float64   `json:"maxScore"`
	Remarks       string    `json:"remarks,omitempty"`
}

type RecordRequest struct {
	AttemptKey
	InstituteID   int64
	JobCategoryID int64
	Items         []ItemScore
	Remarks       string
	RecordedBy    int64
}

// AnswerRequest carries the raw option values picked per scale item.
type AnswerRequest struct {
	AttemptKey
	InstituteID   int64
	JobCategoryID int64
	Answers       map[int64]int
	Remarks       string
	RecordedBy    int64
}

type Receipt struct {
	AttemptKey
	AttemptNo     int       `json:"attemptNo"`
	MaxScore      float64   `json:"maxScore"`
	ObtainedScore float64   `json:"obtainedScore"`
	CreatedAt     time.Time `json:"createdAt"`
}

type TotalFilter struct {
	PeriodID       int64
	InstituteIDs   []int64
	JobCategoryIDs []int64
}
