package exclusion

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO exclusions (owner_user_id, period_id, appraisal_type_id, employee_id, description)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id, created_at
  `, rec.OwnerUserID, rec.PeriodID, rec.AppraisalTypeID, rec.EmployeeID, rec.Description).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Record{}, ErrDuplicateExclusion
			case "23503":
				return Record{}, ErrInvalidExclusion
			}
		}
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) List(ctx context.Context, ownerUserID, periodID int64) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT x.id, x.owner_user_id, x.period_id, x.appraisal_type_id, x.employee_id, e.emp_name, x.description, x.created_at
    FROM exclusions x
    JOIN employees e ON e.id = x.employee_id
    WHERE x.owner_user_id = $1 AND x.period_id = $2
    ORDER BY x.created_at DESC, x.id DESC
  `, ownerUserID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.OwnerUserID, &r.PeriodID, &r.AppraisalTypeID, &r.EmployeeID, &r.EmployeeName, &r.Description, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, ownerUserID, periodID, id int64) (bool, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM exclusions
    WHERE id = $1 AND owner_user_id = $2 AND period_id = $3
  `, id, ownerUserID, periodID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ExcludedEmployeeIDs(ctx context.Context, ownerUserID, periodID, appraisalTypeID int64) ([]int64, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id
    FROM exclusions
    WHERE owner_user_id = $1 AND period_id = $2 AND appraisal_type_id = $3
  `, ownerUserID, periodID, appraisalTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
