package appraisal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) WithAttemptLock(ctx context.Context, key AttemptKey, fn func(tx AttemptTx) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key.String()); err != nil {
		s.rollback(ctx, tx)
		return fmt.Errorf("lock %s: %w", key, err)
	}
	if err := fn(&pgAttemptTx{tx: tx}); err != nil {
		s.rollback(ctx, tx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return translateWriteErr(err)
	}
	return nil
}

func (s *Store) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.Log.Warn("attempt rollback failed", "err", err)
	}
}

type pgAttemptTx struct {
	tx pgx.Tx
}

func (t *pgAttemptTx) MaxAttemptNo(ctx context.Context, key AttemptKey) (int, error) {
	var maxNo int
	err := t.tx.QueryRow(ctx, `
    SELECT COALESCE(MAX(attempt_no), 0)
    FROM appraisal_totals
    WHERE period_id = $1 AND appraisal_type_id = $2 AND employee_id = $3
  `, key.PeriodID, key.AppraisalTypeID, key.EmployeeID).Scan(&maxNo)
	return maxNo, err
}

func (t *pgAttemptTx) InsertItems(ctx context.Context, key AttemptKey, attemptNo int, items []ItemScore, recordedBy int64) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
      INSERT INTO appraisal_items (period_id, appraisal_type_id, employee_id, attempt_no, item_id, max_score, obtained_score, recorded_by)
      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, key.PeriodID, key.AppraisalTypeID, key.EmployeeID, attemptNo, item.ItemID, item.MaxScore, item.ObtainedScore, recordedBy)
	}
	return translateWriteErr(t.tx.SendBatch(ctx, batch).Close())
}

func (t *pgAttemptTx) InsertTotal(ctx context.Context, total Total) (time.Time, error) {
	var createdAt time.Time
	err := t.tx.QueryRow(ctx, `
    INSERT INTO appraisal_totals (period_id, appraisal_type_id, employee_id, attempt_no, institute_id, job_category_id, max_score, obtained_score, remarks, recorded_by)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    RETURNING created_at
  `, total.PeriodID, total.AppraisalTypeID, total.EmployeeID, total.AttemptNo, total.InstituteID, total.JobCategoryID,
		total.MaxScore, total.ObtainedScore, total.Remarks, total.RecordedBy).Scan(&createdAt)
	if err != nil {
		return time.Time{}, translateWriteErr(err)
	}
	return createdAt, nil
}

func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrDuplicateAttempt)
		case "23514":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrObtainedExceedsMax)
		case "23503":
			return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrUnknownReference)
		}
	}
	return err
}

func (s *Store) LatestTotals(ctx context.Context, periodID, appraisalTypeID int64, employeeIDs []int64) (map[int64]LastAttempt, error) {
	out := make(map[int64]LastAttempt, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT ON (employee_id) employee_id, attempt_no, created_at, obtained_score, max_score, remarks
    FROM appraisal_totals
    WHERE period_id = $1 AND appraisal_type_id = $2 AND employee_id = ANY($3)
    ORDER BY employee_id, attempt_no DESC
  `, periodID, appraisalTypeID, employeeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var employeeID int64
		var last LastAttempt
		if err := rows.Scan(&employeeID, &last.AttemptNo, &last.CreatedAt, &last.ObtainedScore, &last.MaxScore, &last.Remarks); err != nil {
			return nil, err
		}
		out[employeeID] = last
	}
	return out, rows.Err()
}

func (s *Store) ListTotals(ctx context.Context, filter TotalFilter) ([]Total, error) {
	query := `
    SELECT period_id, appraisal_type_id, employee_id, attempt_no, institute_id, job_category_id,
           max_score, obtained_score, remarks, recorded_by, created_at
    FROM appraisal_totals
    WHERE period_id = $1
  `
	args := []any{filter.PeriodID}
	if len(filter.InstituteIDs) > 0 {
		args = append(args, filter.InstituteIDs)
		query += fmt.Sprintf(" AND institute_id = ANY($%d)", len(args))
	}
	if len(filter.JobCategoryIDs) > 0 {
		args = append(args, filter.JobCategoryIDs)
		query += fmt.Sprintf(" AND job_category_id = ANY($%d)", len(args))
	}
	query += " ORDER BY employee_id, appraisal_type_id, attempt_no"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Total
	for rows.Next() {
		var t Total
		if err := rows.Scan(&t.PeriodID, &t.AppraisalTypeID, &t.EmployeeID, &t.AttemptNo, &t.InstituteID, &t.JobCategoryID,
			&t.MaxScore, &t.ObtainedScore, &t.Remarks, &t.RecordedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
