package appraisal

import "errors"

var (
	ErrInvalidKey         = errors.New("period, appraisal type and employee are required")
	ErrNoItems            = errors.New("an attempt needs at least one item score")
	ErrDuplicateItem      = errors.New("item scored more than once")
	ErrInvalidScore       = errors.New("scores must not be negative")
	ErrObtainedExceedsMax = errors.New("obtained score exceeds maximum score")
	ErrUnansweredItems    = errors.New("all items must be answered")
	ErrUnknownItem        = errors.New("answer for an item outside the appraisal scale")
	ErrInvalidSelection   = errors.New("institute and job category must be among the employee's memberships")
	ErrDuplicateAttempt   = errors.New("attempt already recorded")
	ErrScaleMissing       = errors.New("appraisal type has no scale")
	ErrUnknownReference   = errors.New("attempt references a period, appraisal type, employee or item that does not exist")
)
