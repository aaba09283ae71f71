package assessee

import "errors"

var (
	ErrAppraisalTypeNotFound         = errors.New("appraisal type not found")
	ErrUnknownCategory               = errors.New("appraisal type has an unknown category")
	ErrNotAuthorizedAssessor         = errors.New("evaluator is not an assessor")
	ErrNotAuthorizedInspector        = errors.New("evaluator is not an inspector")
	ErrNoActivePeriod                = errors.New("no active period")
	ErrScheduleNotOpen               = errors.New("appraisal schedule is not open")
	ErrProfileMissingIdentityCode    = errors.New("evaluator profile has no employee code")
	ErrExclusionSettingMisconfigured = errors.New("self appraisal requires EXCLUDE_SELF to be enabled")
)
