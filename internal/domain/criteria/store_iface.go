package criteria

import "context"

type StoreAPI interface {
	Criteria(ctx context.Context) ([]Criterion, error)
	Overrides(ctx context.Context, appraisalTypeID int64) (map[string]bool, error)
	UpsertOverride(ctx context.Context, appraisalTypeID int64, name string, value bool) error
}
