package assessee

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"acr/internal/domain/criteria"
	"acr/internal/domain/directory"
	"acr/internal/platform/logger"
)

var tracer = otel.Tracer("acr/assessee")

type Service struct {
	directory  Directory
	criteria   CriteriaRegistry
	exclusions ExclusionLedger
	history    AttemptHistory
	log        *logger.Logger
	now        func() time.Time
}

func NewService(dir Directory, registry CriteriaRegistry, exclusions ExclusionLedger, history AttemptHistory, log *logger.Logger) *Service {
	return &Service{
		directory:  dir,
		criteria:   registry,
		exclusions: exclusions,
		history:    history,
		log:        logger.OrNop(log),
		now:        time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Resolve returns the employees the evaluator must assess for the appraisal type
// within the period, decorated with their latest attempt and sorted by name.
func (s *Service) Resolve(ctx context.Context, req Request) ([]Assessee, error) {
	ctx, span := tracer.Start(ctx, "assessee.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("evaluator.user_id", req.EvaluatorUserID),
		attribute.Int64("appraisal_type.id", req.AppraisalTypeID),
		attribute.Int64("period.id", req.PeriodID),
	)

	out, err := s.resolve(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("assessees", len(out)))
	return out, nil
}

func (s *Service) resolve(ctx context.Context, req Request) ([]Assessee, error) {
	appraisalType, err := s.directory.AppraisalType(ctx, req.AppraisalTypeID)
	if err != nil {
		if errors.Is(err, directory.ErrAppraisalTypeNotFound) {
			return nil, fmt.Errorf("appraisal type %d: %w", req.AppraisalTypeID, ErrAppraisalTypeNotFound)
		}
		return nil, err
	}
	if !appraisalType.Category.Valid() {
		return nil, fmt.Errorf("appraisal type %d has category %d: %w", appraisalType.ID, appraisalType.Category, ErrUnknownCategory)
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("appraisal_type.category", appraisalType.Category.String()))

	profile, err := s.directory.EvaluatorProfile(ctx, req.EvaluatorUserID)
	if err != nil {
		if !errors.Is(err, directory.ErrProfileNotFound) {
			return nil, err
		}
		profile = directory.EvaluatorProfile{UserID: req.EvaluatorUserID}
	}

	switch appraisalType.Category {
	case directory.CategoryPeer:
		if !profile.IsAssessor {
			return nil, ErrNotAuthorizedAssessor
		}
	case directory.CategoryInspection:
		if !profile.IsInspector {
			return nil, ErrNotAuthorizedInspector
		}
	}

	if err := s.checkWindow(ctx, req); err != nil {
		return nil, err
	}

	settings, err := s.criteria.Settings(ctx, appraisalType.ID)
	if err != nil {
		return nil, fmt.Errorf("load criteria: %w", err)
	}
	s.log.Debug("criteria resolved", "appraisalTypeId", appraisalType.ID, "criteria", settings.Values())

	var employees []directory.Employee
	if appraisalType.Category == directory.CategorySelf {
		employees, err = s.selfCandidates(ctx, profile, settings)
	} else {
		employees, err = s.candidates(ctx, req, appraisalType, profile, settings)
	}
	if err != nil {
		return nil, err
	}

	return s.decorate(ctx, req, employees)
}

func (s *Service) checkWindow(ctx context.Context, req Request) error {
	if req.PeriodID <= 0 {
		return ErrNoActivePeriod
	}
	if _, err := s.directory.Period(ctx, req.PeriodID); err != nil {
		if errors.Is(err, directory.ErrPeriodNotFound) {
			return fmt.Errorf("period %d: %w", req.PeriodID, ErrNoActivePeriod)
		}
		return err
	}

	schedule, err := s.directory.Schedule(ctx, req.PeriodID, req.AppraisalTypeID)
	if err != nil {
		if errors.Is(err, directory.ErrScheduleNotFound) {
			return fmt.Errorf("no schedule for period %d: %w", req.PeriodID, ErrScheduleNotOpen)
		}
		return err
	}
	now := s.now()
	if !schedule.OpenAt(now) {
		return fmt.Errorf("outside window %s to %s: %w",
			schedule.StartDate.Format(time.DateOnly), schedule.EndDate.Format(time.DateOnly), ErrScheduleNotOpen)
	}
	return nil
}

func (s *Service) selfCandidates(ctx context.Context, profile directory.EvaluatorProfile, settings criteria.Settings) ([]directory.Employee, error) {
	if !settings.Enabled(criteria.ExcludeSelf) {
		return nil, ErrExclusionSettingMisconfigured
	}
	if !profile.HasEmployeeCode() {
		return nil, ErrProfileMissingIdentityCode
	}
	return s.directory.EmployeesByCode(ctx, profile.EmployeeCode)
}

func (s *Service) candidates(ctx context.Context, req Request, appraisalType directory.AppraisalType, profile directory.EvaluatorProfile, settings criteria.Settings) ([]directory.Employee, error) {
	var (
		universe []directory.Employee
		excluded []int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		universe, err = s.directory.Employees(gctx)
		if err != nil {
			return fmt.Errorf("load employees: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		excluded, err = s.exclusions.ExcludedEmployeeIDs(gctx, req.EvaluatorUserID, req.PeriodID, req.AppraisalTypeID)
		if err != nil {
			return fmt.Errorf("load exclusions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	skip := make(map[int64]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}
	// The evaluator's own record is always dropped here; EXCLUDE_SELF only governs
	// the self branch.
	pool := make([]directory.Employee, 0, len(universe))
	for _, e := range universe {
		if profile.HasEmployeeCode() && e.Code == profile.EmployeeCode {
			continue
		}
		if skip[e.ID] {
			continue
		}
		pool = append(pool, e)
	}

	pool = narrow(pool, directory.DimensionJobCategory, appraisalType.Permitted.JobCategoryIDs)
	pool = narrow(pool, directory.DimensionInstitute, appraisalType.Permitted.InstituteIDs)

	for _, gt := range evaluatorGates(appraisalType.Category, profile) {
		if !settings.Enabled(gt.criterion) {
			continue
		}
		pool = narrow(pool, gt.dimension, gt.allowed)
	}

	s.log.Debug("assessee candidates resolved",
		"evaluatorUserId", req.EvaluatorUserID,
		"appraisalTypeId", req.AppraisalTypeID,
		"universe", len(universe),
		"excluded", len(excluded),
		"remaining", len(pool),
	)
	return pool, nil
}

func (s *Service) decorate(ctx context.Context, req Request, employees []directory.Employee) ([]Assessee, error) {
	seen := make(map[int64]bool, len(employees))
	ids := make([]int64, 0, len(employees))
	out := make([]Assessee, 0, len(employees))
	for _, e := range employees {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		ids = append(ids, e.ID)
		out = append(out, Assessee{Employee: e})
	}

	if len(ids) > 0 {
		latest, err := s.history.LatestTotals(ctx, req.PeriodID, req.AppraisalTypeID, ids)
		if err != nil {
			return nil, fmt.Errorf("load latest attempts: %w", err)
		}
		for i := range out {
			if last, ok := latest[out[i].ID]; ok {
				last := last
				out[i].LastAttempt = &last
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
