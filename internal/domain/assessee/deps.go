package assessee

import (
	"context"

	"acr/internal/domain/appraisal"
	"acr/internal/domain/criteria"
	"acr/internal/domain/directory"
)

type Directory interface {
	AppraisalType(ctx context.Context, id int64) (directory.AppraisalType, error)
	EvaluatorProfile(ctx context.Context, userID int64) (directory.EvaluatorProfile, error)
	Period(ctx context.Context, id int64) (directory.Period, error)
	Schedule(ctx context.Context, periodID, appraisalTypeID int64) (directory.Schedule, error)
	Employees(ctx context.Context) ([]directory.Employee, error)
	EmployeesByCode(ctx context.Context, code int) ([]directory.Employee, error)
}

type CriteriaRegistry interface {
	Settings(ctx context.Context, appraisalTypeID int64) (criteria.Settings, error)
}

type ExclusionLedger interface {
	ExcludedEmployeeIDs(ctx context.Context, ownerUserID, periodID, appraisalTypeID int64) ([]int64, error)
}

type AttemptHistory interface {
	LatestTotals(ctx context.Context, periodID, appraisalTypeID int64, employeeIDs []int64) (map[int64]appraisal.LastAttempt, error)
}
