package criteria

import "errors"

var (
	ErrUnknownCriterion      = errors.New("criterion not registered")
	ErrAppraisalTypeNotFound = errors.New("appraisal type not found")
)
