package directory

import (
	"context"
	"time"
)

type StoreAPI interface {
	Employees(ctx context.Context) ([]Employee, error)
	EmployeesByCode(ctx context.Context, code int) ([]Employee, error)
	Employee(ctx context.Context, id int64) (Employee, error)
	EmployeeRefs(ctx context.Context, ids []int64) (map[int64]EmployeeRef, error)
	SearchEmployees(ctx context.Context, query string, limit int) ([]EmployeeRef, error)
	AppraisalType(ctx context.Context, id int64) (AppraisalType, error)
	AppraisalTypeNames(ctx context.Context, ids []int64) (map[int64]string, error)
	EvaluatorProfile(ctx context.Context, userID int64) (EvaluatorProfile, error)
	Period(ctx context.Context, id int64) (Period, error)
	FlaggedActivePeriod(ctx context.Context) (Period, error)
	PeriodContaining(ctx context.Context, at time.Time) (Period, error)
	Schedule(ctx context.Context, periodID, appraisalTypeID int64) (Schedule, error)
	ScaleItems(ctx context.Context, scaleID int64) ([]ScaleItem, error)
}
