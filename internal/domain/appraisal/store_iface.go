package appraisal

import (
	"context"
	"time"
)

type StoreAPI interface {
	// WithAttemptLock runs fn inside one transaction that holds an exclusive lock on key.
	// fn's writes commit together or not at all.
	WithAttemptLock(ctx context.Context, key AttemptKey, fn func(tx AttemptTx) error) error
	LatestTotals(ctx context.Context, periodID, appraisalTypeID int64, employeeIDs []int64) (map[int64]LastAttempt, error)
	ListTotals(ctx context.Context, filter TotalFilter) ([]Total, error)
}

type AttemptTx interface {
	MaxAttemptNo(ctx context.Context, key AttemptKey) (int, error)
	InsertItems(ctx context.Context, key AttemptKey, attemptNo int, items []ItemScore, recordedBy int64) error
	InsertTotal(ctx context.Context, total Total) (time.Time, error)
}
