package exclusion

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	List(ctx context.Context, ownerUserID, periodID int64) ([]Record, error)
	Delete(ctx context.Context, ownerUserID, periodID, id int64) (bool, error)
	ExcludedEmployeeIDs(ctx context.Context, ownerUserID, periodID, appraisalTypeID int64) ([]int64, error)
}
