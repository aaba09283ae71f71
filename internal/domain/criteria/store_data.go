package criteria

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) Criteria(ctx context.Context) ([]Criterion, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT name, display_name, description, default_value
    FROM criteria
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Criterion
	for rows.Next() {
		var c Criterion
		if err := rows.Scan(&c.Name, &c.DisplayName, &c.Description, &c.Default); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Overrides(ctx context.Context, appraisalTypeID int64) (map[string]bool, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT name, value
    FROM criteria_overrides
    WHERE appraisal_type_id = $1
  `, appraisalTypeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var name string
		var value bool
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}

func (s *Store) UpsertOverride(ctx context.Context, appraisalTypeID int64, name string, value bool) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO criteria_overrides (appraisal_type_id, name, value)
    VALUES ($1, $2, $3)
    ON CONFLICT (appraisal_type_id, name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
  `, appraisalTypeID, name, value)
	return translateOverrideErr(err)
}

// translateOverrideErr maps foreign-key violations to the side that is missing.
func translateOverrideErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23503" {
		return err
	}
	if pgErr.ConstraintName == "criteria_overrides_name_fkey" {
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrUnknownCriterion)
	}
	return fmt.Errorf("%s: %w", pgErr.ConstraintName, ErrAppraisalTypeNotFound)
}
