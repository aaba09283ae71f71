package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"acr/internal/domain/appraisal"
	"acr/internal/domain/directory"
	"acr/internal/platform/logger"
)

var tracer = otel.Tracer("acr/scoring")

var ErrPeriodRequired = errors.New("period is required")

type TotalsReader interface {
	ListTotals(ctx context.Context, filter appraisal.TotalFilter) ([]appraisal.Total, error)
}

type Names interface {
	EmployeeRefs(ctx context.Context, ids []int64) (map[int64]directory.EmployeeRef, error)
	AppraisalTypeNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

type Service struct {
	totals TotalsReader
	names  Names
	log    *logger.Logger
}

func NewService(totals TotalsReader, names Names, log *logger.Logger) *Service {
	return &Service{totals: totals, names: names, log: logger.OrNop(log)}
}

func (s *Service) load(ctx context.Context, periodID int64, instituteIDs, jobCategoryIDs []int64) ([]appraisal.Total, error) {
	if periodID <= 0 {
		return nil, ErrPeriodRequired
	}
	totals, err := s.totals.ListTotals(ctx, appraisal.TotalFilter{
		PeriodID:       periodID,
		InstituteIDs:   instituteIDs,
		JobCategoryIDs: jobCategoryIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("load totals: %w", err)
	}
	return totals, nil
}

func (s *Service) Aggregate(ctx context.Context, q Query) (Report, error) {
	ctx, span := tracer.Start(ctx, "scoring.Aggregate")
	defer span.End()

	totals, err := s.load(ctx, q.PeriodID, q.InstituteIDs, q.JobCategoryIDs)
	if err != nil {
		span.RecordError(err)
		return Report{}, err
	}
	report := Aggregate(totals, q.Strategy)
	span.SetAttributes(
		attribute.String("strategy", report.Strategy),
		attribute.Int("totals", len(totals)),
		attribute.Int("employees", len(report.EmployeeIDs)),
	)

	if report.FellBack() {
		s.log.Warn("unknown scoring strategy, using default", "requested", q.Strategy, "strategy", report.Strategy)
	}
	for _, w := range report.Warnings {
		s.log.Warn("attempt history integrity", "periodId", q.PeriodID, "detail", w)
	}
	return report, nil
}

// Consolidated aggregates and lays the report out by employee and type name.
func (s *Service) Consolidated(ctx context.Context, q Query) (Consolidated, error) {
	report, err := s.Aggregate(ctx, q)
	if err != nil {
		return Consolidated{}, err
	}

	var (
		refs      map[int64]directory.EmployeeRef
		typeNames map[int64]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refs, err = s.names.EmployeeRefs(gctx, report.EmployeeIDs)
		return err
	})
	g.Go(func() error {
		var err error
		typeNames, err = s.names.AppraisalTypeNames(gctx, report.AppraisalTypeIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return Consolidated{}, fmt.Errorf("load report names: %w", err)
	}

	return Layout(q.PeriodID, report, refs, typeNames), nil
}

// Layout orders columns by type name and rows by employee name, ids breaking ties.
func Layout(periodID int64, report Report, refs map[int64]directory.EmployeeRef, typeNames map[int64]string) Consolidated {
	columns := make([]Column, 0, len(report.AppraisalTypeIDs))
	for _, id := range report.AppraisalTypeIDs {
		name, ok := typeNames[id]
		if !ok {
			name = fmt.Sprintf("Type %d", id)
		}
		columns = append(columns, Column{AppraisalTypeID: id, Name: name})
	}
	sort.SliceStable(columns, func(i, j int) bool {
		if columns[i].Name != columns[j].Name {
			return columns[i].Name < columns[j].Name
		}
		return columns[i].AppraisalTypeID < columns[j].AppraisalTypeID
	})

	rows := make([]Row, 0, len(report.EmployeeIDs))
	for _, id := range report.EmployeeIDs {
		ref, ok := refs[id]
		if !ok {
			ref = directory.EmployeeRef{ID: id, Name: fmt.Sprintf("Employee %d", id)}
		}
		row := Row{Employee: ref, Cells: make([]Cell, len(columns)), Total: report.RowTotals[id]}
		for i, col := range columns {
			if c, ok := report.Cell(id, col.AppraisalTypeID); ok {
				row.Cells[i] = c
			}
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Employee.Name != rows[j].Employee.Name {
			return rows[i].Employee.Name < rows[j].Employee.Name
		}
		return rows[i].Employee.ID < rows[j].Employee.ID
	})

	return Consolidated{
		PeriodID: periodID,
		Strategy: report.Strategy,
		Label:    report.Label,
		Columns:  columns,
		Rows:     rows,
		Warnings: report.Warnings,
	}
}

func (s *Service) Totals(ctx context.Context, q TotalsQuery) ([]EmployeeTotals, error) {
	totals, err := s.load(ctx, q.PeriodID, q.InstituteIDs, q.JobCategoryIDs)
	if err != nil {
		return nil, err
	}
	seen := map[int64]bool{}
	var ids []int64
	for _, t := range totals {
		if !seen[t.EmployeeID] {
			seen[t.EmployeeID] = true
			ids = append(ids, t.EmployeeID)
		}
	}
	refs, err := s.names.EmployeeRefs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load employee names: %w", err)
	}
	return GroupTotals(totals, refs, q.Search), nil
}

// ScanIntegrity reports attempt/timestamp disagreements for a whole period.
func (s *Service) ScanIntegrity(ctx context.Context, periodID int64) ([]string, error) {
	totals, err := s.load(ctx, periodID, nil, nil)
	if err != nil {
		return nil, err
	}
	warnings := IntegrityWarnings(totals)
	for _, w := range warnings {
		s.log.Warn("attempt history integrity", "periodId", periodID, "detail", w)
	}
	return warnings, nil
}
