package exclusion

import (
	"context"
	"strings"

	"acr/internal/platform/logger"
)

type Service struct {
	store StoreAPI
	log   *logger.Logger
}

func NewService(store StoreAPI, log *logger.Logger) *Service {
	return &Service{store: store, log: logger.OrNop(log)}
}

func (s *Service) Add(ctx context.Context, rec Record) (Record, error) {
	if rec.OwnerUserID <= 0 || rec.PeriodID <= 0 || rec.AppraisalTypeID <= 0 || rec.EmployeeID <= 0 {
		return Record{}, ErrInvalidExclusion
	}
	rec.Description = strings.TrimSpace(rec.Description)
	created, err := s.store.Insert(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.log.Info("exclusion added",
		"exclusionId", created.ID,
		"ownerUserId", created.OwnerUserID,
		"periodId", created.PeriodID,
		"appraisalTypeId", created.AppraisalTypeID,
		"employeeId", created.EmployeeID,
	)
	return created, nil
}

func (s *Service) List(ctx context.Context, ownerUserID, periodID int64) ([]Record, error) {
	records, err := s.store.List(ctx, ownerUserID, periodID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Remove deletes only records owned by the caller within the period.
func (s *Service) Remove(ctx context.Context, ownerUserID, periodID, id int64) error {
	deleted, err := s.store.Delete(ctx, ownerUserID, periodID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrExclusionNotFound
	}
	s.log.Info("exclusion removed", "exclusionId", id, "ownerUserId", ownerUserID)
	return nil
}

func (s *Service) ExcludedEmployeeIDs(ctx context.Context, ownerUserID, periodID, appraisalTypeID int64) ([]int64, error) {
	return s.store.ExcludedEmployeeIDs(ctx, ownerUserID, periodID, appraisalTypeID)
}
