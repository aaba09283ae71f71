package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"acr/internal/domain/directory"
	"acr/internal/platform/logger"
	"acr/internal/platform/querier"
)

const JobIntegrityScan = "integrity_scan"

const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

type PeriodSource interface {
	ActivePeriod(ctx context.Context) (directory.Period, error)
}

type IntegrityScanner interface {
	ScanIntegrity(ctx context.Context, periodID int64) ([]string, error)
}

type WarningSink interface {
	IntegrityWarnings(n int)
}

type Service struct {
	DB       querier.Querier
	Log      *logger.Logger
	periods  PeriodSource
	scanner  IntegrityScanner
	sink     WarningSink
	interval time.Duration
	queue    chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db querier.Querier, periods PeriodSource, scanner IntegrityScanner, interval time.Duration, log *logger.Logger) *Service {
	return &Service{
		DB:       db,
		Log:      logger.OrNop(log),
		periods:  periods,
		scanner:  scanner,
		interval: interval,
		queue:    make(chan job, 16),
	}
}

// WithWarningSink forwards integrity warning counts, e.g. to the metrics collector.
func (s *Service) WithWarningSink(sink WarningSink) *Service {
	s.sink = sink
	return s
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.interval > 0 {
		go s.scheduleIntegrityScan(ctx, s.interval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		s.Log.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.Log.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	var runID int64
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, statusRunning).Scan(&runID); err != nil {
		s.Log.Warn("job run insert failed", "jobType", j.Type, "err", err)
	}

	details, err := j.Run(ctx)
	status := statusCompleted
	if err != nil {
		status = statusFailed
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		s.Log.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID > 0 {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			s.Log.Warn("job run update failed", "runId", runID, "err", updErr)
		}
	}
	return details, err
}

func (s *Service) scheduleIntegrityScan(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobIntegrityScan, s.IntegrityScan)
		}
	}
}

// IntegrityScan checks the active period's attempt history. No active period is
// not a failure; the run records that it was skipped.
func (s *Service) IntegrityScan(ctx context.Context) (any, error) {
	period, err := s.periods.ActivePeriod(ctx)
	if errors.Is(err, directory.ErrPeriodNotFound) {
		return map[string]any{"skipped": "no active period"}, nil
	}
	if err != nil {
		return nil, err
	}

	warnings, err := s.scanner.ScanIntegrity(ctx, period.ID)
	if err != nil {
		return map[string]any{"periodId": period.ID}, err
	}
	if s.sink != nil {
		s.sink.IntegrityWarnings(len(warnings))
	}
	if warnings == nil {
		warnings = []string{}
	}
	return map[string]any{
		"periodId": period.ID,
		"warnings": len(warnings),
		"details":  warnings,
	}, nil
}
