package exclusion

import "errors"

var (
	ErrDuplicateExclusion = errors.New("employee already excluded for this period and appraisal type")
	ErrExclusionNotFound  = errors.New("exclusion not found")
	ErrInvalidExclusion   = errors.New("exclusion requires period, appraisal type and employee")
)
