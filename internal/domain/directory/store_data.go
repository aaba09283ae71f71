package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type membershipTable struct {
	dimension Dimension
	table     string
	column    string
}

// Both lists follow the field order of scopeTargets.
var employeeMemberships = []membershipTable{
	{DimensionJobCategory, "employee_job_categories", "job_category_id"},
	{DimensionInstitute, "employee_institutes", "institute_id"},
	{DimensionDepartment, "employee_departments", "department_id"},
	{DimensionWing, "employee_wings", "wing_id"},
	{DimensionSubject, "employee_subjects", "subject_id"},
}

var appraisalTypeMemberships = []membershipTable{
	{DimensionJobCategory, "appraisal_type_job_categories", "job_category_id"},
	{DimensionInstitute, "appraisal_type_institutes", "institute_id"},
	{DimensionDepartment, "appraisal_type_departments", "department_id"},
	{DimensionWing, "appraisal_type_wings", "wing_id"},
	{DimensionSubject, "appraisal_type_subjects", "subject_id"},
}

func membershipColumns(tables []membershipTable, ownerColumn, ownerRef string) string {
	cols := make([]string, 0, len(tables))
	for _, t := range tables {
		cols = append(cols, fmt.Sprintf(
			"ARRAY(SELECT %s FROM %s WHERE %s = %s ORDER BY %s)::bigint[]",
			t.column, t.table, ownerColumn, ownerRef, t.column,
		))
	}
	return strings.Join(cols, ",\n    ")
}

var (
	employeeColumns      = "e.id, e.emp_code, e.emp_name,\n    " + membershipColumns(employeeMemberships, "employee_id", "e.id")
	appraisalTypeColumns = "t.id, t.name, t.display_name, t.category, COALESCE(t.scale_id, 0),\n    " + membershipColumns(appraisalTypeMemberships, "appraisal_type_id", "t.id")
)

func scopeTargets(s *Scope) []any {
	return []any{&s.JobCategoryIDs, &s.InstituteIDs, &s.DepartmentIDs, &s.WingIDs, &s.SubjectIDs}
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	dest := append([]any{&e.ID, &e.Code, &e.Name}, scopeTargets(&e.Memberships)...)
	if err := row.Scan(dest...); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) queryEmployees(ctx context.Context, where string, args ...any) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+employeeColumns+"\n  FROM employees e "+where+" ORDER BY e.emp_name, e.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Employees(ctx context.Context) ([]Employee, error) {
	return s.queryEmployees(ctx, "")
}

func (s *Store) EmployeesByCode(ctx context.Context, code int) ([]Employee, error) {
	return s.queryEmployees(ctx, "WHERE e.emp_code = $1", code)
}

func (s *Store) Employee(ctx context.Context, id int64) (Employee, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+employeeColumns+"\n  FROM employees e WHERE e.id = $1", id)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) EmployeeRefs(ctx context.Context, ids []int64) (map[int64]EmployeeRef, error) {
	out := make(map[int64]EmployeeRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, "SELECT id, emp_code, emp_name FROM employees WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ref EmployeeRef
		if err := rows.Scan(&ref.ID, &ref.Code, &ref.Name); err != nil {
			return nil, err
		}
		out[ref.ID] = ref
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *Store) SearchEmployees(ctx context.Context, query string, limit int) ([]EmployeeRef, error) {
	pattern := likeEscaper.Replace(query)
	rows, err := s.DB.Query(ctx, `
    SELECT id, emp_code, emp_name
    FROM employees
    WHERE emp_name ILIKE '%' || $1 || '%' OR emp_code::text LIKE $1 || '%'
    ORDER BY emp_name, id
    LIMIT $2
  `, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeRef
	for rows.Next() {
		var ref EmployeeRef
		if err := rows.Scan(&ref.ID, &ref.Code, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (s *Store) AppraisalType(ctx context.Context, id int64) (AppraisalType, error) {
	var t AppraisalType
	dest := append([]any{&t.ID, &t.Name, &t.DisplayName, &t.Category, &t.ScaleID}, scopeTargets(&t.Permitted)...)
	err := s.DB.QueryRow(ctx, "SELECT "+appraisalTypeColumns+"\n  FROM appraisal_types t WHERE t.id = $1", id).Scan(dest...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AppraisalType{}, ErrAppraisalTypeNotFound
		}
		return AppraisalType{}, err
	}
	return t, nil
}

func (s *Store) AppraisalTypeNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.DB.Query(ctx, "SELECT id, display_name FROM appraisal_types WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func (s *Store) EvaluatorProfile(ctx context.Context, userID int64) (EvaluatorProfile, error) {
	p := EvaluatorProfile{UserID: userID}
	var code *int
	err := s.DB.QueryRow(ctx, `
    SELECT emp_code, is_assessor, is_inspector
    FROM evaluator_profiles
    WHERE user_id = $1
  `, userID).Scan(&code, &p.IsAssessor, &p.IsInspector)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return EvaluatorProfile{}, ErrProfileNotFound
		}
		return EvaluatorProfile{}, err
	}
	if code != nil {
		p.EmployeeCode = *code
	}

	rows, err := s.DB.Query(ctx, `
    SELECT role, dimension, ref_id
    FROM evaluator_scopes
    WHERE user_id = $1
    ORDER BY role, dimension, ref_id
  `, userID)
	if err != nil {
		return EvaluatorProfile{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var role, dimension string
		var refID int64
		if err := rows.Scan(&role, &dimension, &refID); err != nil {
			return EvaluatorProfile{}, err
		}
		switch role {
		case RoleAssessor:
			p.Assessor.Add(Dimension(dimension), refID)
		case RoleInspector:
			p.Inspector.Add(Dimension(dimension), refID)
		}
	}
	return p, rows.Err()
}

const periodColumns = "id, name, start_date, end_date, is_active"

func (s *Store) scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	if err := row.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

func (s *Store) Period(ctx context.Context, id int64) (Period, error) {
	return s.scanPeriod(s.DB.QueryRow(ctx, "SELECT "+periodColumns+" FROM periods WHERE id = $1", id))
}

func (s *Store) FlaggedActivePeriod(ctx context.Context) (Period, error) {
	return s.scanPeriod(s.DB.QueryRow(ctx, "SELECT "+periodColumns+" FROM periods WHERE is_active ORDER BY id LIMIT 1"))
}

func (s *Store) PeriodContaining(ctx context.Context, at time.Time) (Period, error) {
	return s.scanPeriod(s.DB.QueryRow(ctx, `
    SELECT `+periodColumns+`
    FROM periods
    WHERE $1::date BETWEEN start_date AND end_date
    ORDER BY start_date DESC, id DESC
    LIMIT 1
  `, at))
}

func (s *Store) Schedule(ctx context.Context, periodID, appraisalTypeID int64) (Schedule, error) {
	var sc Schedule
	err := s.DB.QueryRow(ctx, `
    SELECT id, period_id, appraisal_type_id, start_date, end_date, description
    FROM schedules
    WHERE period_id = $1 AND appraisal_type_id = $2
  `, periodID, appraisalTypeID).Scan(&sc.ID, &sc.PeriodID, &sc.AppraisalTypeID, &sc.StartDate, &sc.EndDate, &sc.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Schedule{}, ErrScheduleNotFound
		}
		return Schedule{}, err
	}
	return sc, nil
}

func (s *Store) ScaleItems(ctx context.Context, scaleID int64) ([]ScaleItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, statement, max_option_value
    FROM scale_items
    WHERE scale_id = $1
    ORDER BY position, id
  `, scaleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScaleItem
	for rows.Next() {
		var item ScaleItem
		if err := rows.Scan(&item.ID, &item.Statement, &item.MaxOptionValue); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
