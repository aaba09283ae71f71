package directory

import (
	"context"
	"errors"
	"strings"
	"time"

	"acr/internal/platform/logger"
)

const (
	DefaultLookupLimit = 15
	MaxLookupLimit     = 50
)

type Service struct {
	store StoreAPI
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store StoreAPI, log *logger.Logger) *Service {
	return &Service{store: store, log: logger.OrNop(log), now: time.Now}
}

// WithClock replaces the wall clock; tests pin it.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ActivePeriod returns the period flagged active, otherwise the period whose date
// window contains today.
func (s *Service) ActivePeriod(ctx context.Context) (Period, error) {
	p, err := s.store.FlaggedActivePeriod(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrPeriodNotFound) {
		return Period{}, err
	}
	p, err = s.store.PeriodContaining(ctx, s.now())
	if err != nil {
		return Period{}, err
	}
	s.log.Debug("no flagged period, using date window", "periodId", p.ID)
	return p, nil
}

// LookupEmployees backs the exclusion picker: name substring or code prefix.
func (s *Service) LookupEmployees(ctx context.Context, query string, limit int) ([]EmployeeRef, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []EmployeeRef{}, nil
	}
	if limit <= 0 {
		limit = DefaultLookupLimit
	}
	if limit > MaxLookupLimit {
		limit = MaxLookupLimit
	}
	return s.store.SearchEmployees(ctx, query, limit)
}

func (s *Service) Employees(ctx context.Context) ([]Employee, error) {
	return s.store.Employees(ctx)
}

func (s *Service) EmployeesByCode(ctx context.Context, code int) ([]Employee, error) {
	return s.store.EmployeesByCode(ctx, code)
}

func (s *Service) Employee(ctx context.Context, id int64) (Employee, error) {
	return s.store.Employee(ctx, id)
}

func (s *Service) EmployeeRefs(ctx context.Context, ids []int64) (map[int64]EmployeeRef, error) {
	return s.store.EmployeeRefs(ctx, ids)
}

func (s *Service) AppraisalType(ctx context.Context, id int64) (AppraisalType, error) {
	return s.store.AppraisalType(ctx, id)
}

func (s *Service) AppraisalTypeNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	return s.store.AppraisalTypeNames(ctx, ids)
}

func (s *Service) EvaluatorProfile(ctx context.Context, userID int64) (EvaluatorProfile, error) {
	return s.store.EvaluatorProfile(ctx, userID)
}

func (s *Service) Period(ctx context.Context, id int64) (Period, error) {
	return s.store.Period(ctx, id)
}

func (s *Service) Schedule(ctx context.Context, periodID, appraisalTypeID int64) (Schedule, error) {
	return s.store.Schedule(ctx, periodID, appraisalTypeID)
}

func (s *Service) ScaleItems(ctx context.Context, scaleID int64) ([]ScaleItem, error) {
	return s.store.ScaleItems(ctx, scaleID)
}
