package appraisal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"acr/internal/domain/directory"
	"acr/internal/platform/logger"
)

var tracer = otel.Tracer("acr/appraisal")

// Directory is what recording needs from the directory store.
type Directory interface {
	Period(ctx context.Context, id int64) (directory.Period, error)
	Employee(ctx context.Context, id int64) (directory.Employee, error)
	AppraisalType(ctx context.Context, id int64) (directory.AppraisalType, error)
	ScaleItems(ctx context.Context, scaleID int64) ([]directory.ScaleItem, error)
}

type Service struct {
	store     StoreAPI
	directory Directory
	log       *logger.Logger
}

func NewService(store StoreAPI, dir Directory, log *logger.Logger) *Service {
	return &Service{store: store, directory: dir, log: logger.OrNop(log)}
}

// RecordAttempt appends attempt max+1 for the key with all its item rows and the total.
// Every item must belong to the appraisal type's scale.
func (s *Service) RecordAttempt(ctx context.Context, req RecordRequest) (Receipt, error) {
	return s.traced(ctx, "appraisal.RecordAttempt", req, nil)
}

// RecordAnswers scores the answers against the type's scale and records the attempt.
func (s *Service) RecordAnswers(ctx context.Context, req AnswerRequest) (Receipt, error) {
	if !req.Valid() {
		return Receipt{}, ErrInvalidKey
	}
	scale, err := s.scaleFor(ctx, req.AttemptKey)
	if err != nil {
		return Receipt{}, err
	}
	scores, err := ScoreAnswers(scale, req.Answers)
	if err != nil {
		return Receipt{}, err
	}
	return s.traced(ctx, "appraisal.RecordAnswers", RecordRequest{
		AttemptKey:    req.AttemptKey,
		InstituteID:   req.InstituteID,
		JobCategoryID: req.JobCategoryID,
		Items:         scores,
		Remarks:       req.Remarks,
		RecordedBy:    req.RecordedBy,
	}, scale)
}

func (s *Service) traced(ctx context.Context, name string, req RecordRequest, scale []directory.ScaleItem) (Receipt, error) {
	ctx, span := tracer.Start(ctx, name)
	defer span.End()
	span.SetAttributes(
		attribute.Int64("period.id", req.PeriodID),
		attribute.Int64("appraisal_type.id", req.AppraisalTypeID),
		attribute.Int64("employee.id", req.EmployeeID),
	)

	receipt, err := s.record(ctx, req, scale)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Receipt{}, err
	}
	span.SetAttributes(attribute.Int("attempt.no", receipt.AttemptNo))
	return receipt, nil
}

// record writes the attempt. A nil scale is loaded from the directory.
func (s *Service) record(ctx context.Context, req RecordRequest, scale []directory.ScaleItem) (Receipt, error) {
	if !req.Valid() {
		return Receipt{}, ErrInvalidKey
	}
	maxSum, obtainedSum, err := ValidateItems(req.Items)
	if err != nil {
		return Receipt{}, err
	}
	if scale == nil {
		if scale, err = s.scaleFor(ctx, req.AttemptKey); err != nil {
			return Receipt{}, err
		}
	}
	if err := itemsOnScale(req.Items, scale); err != nil {
		return Receipt{}, err
	}
	if err := s.checkSelection(ctx, req); err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{AttemptKey: req.AttemptKey, MaxScore: maxSum, ObtainedScore: obtainedSum}
	err = s.store.WithAttemptLock(ctx, req.AttemptKey, func(tx AttemptTx) error {
		last, err := tx.MaxAttemptNo(ctx, req.AttemptKey)
		if err != nil {
			return err
		}
		attemptNo := last + 1
		if err := tx.InsertItems(ctx, req.AttemptKey, attemptNo, req.Items, req.RecordedBy); err != nil {
			return err
		}
		createdAt, err := tx.InsertTotal(ctx, Total{
			PeriodID:        req.PeriodID,
			AppraisalTypeID: req.AppraisalTypeID,
			EmployeeID:      req.EmployeeID,
			AttemptNo:       attemptNo,
			InstituteID:     req.InstituteID,
			JobCategoryID:   req.JobCategoryID,
			MaxScore:        maxSum,
			ObtainedScore:   obtainedSum,
			Remarks:         strings.TrimSpace(req.Remarks),
			RecordedBy:      req.RecordedBy,
		})
		if err != nil {
			return err
		}
		receipt.AttemptNo = attemptNo
		receipt.CreatedAt = createdAt
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("record attempt %s: %w", req.AttemptKey, err)
	}

	s.log.Info("appraisal attempt recorded",
		"periodId", req.PeriodID,
		"appraisalTypeId", req.AppraisalTypeID,
		"employeeId", req.EmployeeID,
		"attemptNo", receipt.AttemptNo,
		"recordedBy", req.RecordedBy,
	)
	return receipt, nil
}

// scaleFor checks that the period and appraisal type exist and returns the
// type's scale items. Unknown references surface as ErrUnknownReference.
func (s *Service) scaleFor(ctx context.Context, key AttemptKey) ([]directory.ScaleItem, error) {
	if _, err := s.directory.Period(ctx, key.PeriodID); err != nil {
		if errors.Is(err, directory.ErrPeriodNotFound) {
			return nil, fmt.Errorf("period %d: %w: %w", key.PeriodID, ErrUnknownReference, err)
		}
		return nil, err
	}
	appraisalType, err := s.directory.AppraisalType(ctx, key.AppraisalTypeID)
	if err != nil {
		if errors.Is(err, directory.ErrAppraisalTypeNotFound) {
			return nil, fmt.Errorf("appraisal type %d: %w: %w", key.AppraisalTypeID, ErrUnknownReference, err)
		}
		return nil, err
	}
	if appraisalType.ScaleID == 0 {
		return nil, ErrScaleMissing
	}
	return s.directory.ScaleItems(ctx, appraisalType.ScaleID)
}

func itemsOnScale(items []ItemScore, scale []directory.ScaleItem) error {
	known := make(map[int64]struct{}, len(scale))
	for _, it := range scale {
		known[it.ID] = struct{}{}
	}
	for _, it := range items {
		if _, ok := known[it.ItemID]; !ok {
			return fmt.Errorf("item %d: %w", it.ItemID, ErrUnknownItem)
		}
	}
	return nil
}

func (s *Service) checkSelection(ctx context.Context, req RecordRequest) error {
	employee, err := s.directory.Employee(ctx, req.EmployeeID)
	if err != nil {
		return err
	}
	if !employee.Memberships.Contains(directory.DimensionInstitute, req.InstituteID) {
		return fmt.Errorf("institute %d: %w", req.InstituteID, ErrInvalidSelection)
	}
	if !employee.Memberships.Contains(directory.DimensionJobCategory, req.JobCategoryID) {
		return fmt.Errorf("job category %d: %w", req.JobCategoryID, ErrInvalidSelection)
	}
	return nil
}

func (s *Service) LatestTotals(ctx context.Context, periodID, appraisalTypeID int64, employeeIDs []int64) (map[int64]LastAttempt, error) {
	return s.store.LatestTotals(ctx, periodID, appraisalTypeID, employeeIDs)
}

func (s *Service) ListTotals(ctx context.Context, filter TotalFilter) ([]Total, error) {
	return s.store.ListTotals(ctx, filter)
}
