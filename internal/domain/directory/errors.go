package directory

import "errors"

var (
	ErrEmployeeNotFound      = errors.New("employee not found")
	ErrAppraisalTypeNotFound = errors.New("appraisal type not found")
	ErrProfileNotFound       = errors.New("evaluator profile not found")
	ErrPeriodNotFound        = errors.New("period not found")
	ErrScheduleNotFound      = errors.New("schedule not found")
)
