package directory

import "time"

// Scope is a set of memberships per dimension. Employees carry one as their
// memberships, appraisal types as the permitted population and evaluators per role.
type Scope struct {
	JobCategoryIDs []int64 `json:"jobCategoryIds"`
	InstituteIDs   []int64 `json:"instituteIds"`
	DepartmentIDs  []int64 `json:"departmentIds"`
	WingIDs        []int64 `json:"wingIds"`
	SubjectIDs     []int64 `json:"subjectIds"`
}

func (s Scope) IDs(d Dimension) []int64 {
	switch d {
	case DimensionJobCategory:
		return s.JobCategoryIDs
	case DimensionInstitute:
		return s.InstituteIDs
	case DimensionDepartment:
		return s.DepartmentIDs
	case DimensionWing:
		return s.WingIDs
	case DimensionSubject:
		return s.SubjectIDs
	default:
		return nil
	}
}

func (s *Scope) Add(d Dimension, id int64) {
	switch d {
	case DimensionJobCategory:
		s.JobCategoryIDs = append(s.JobCategoryIDs, id)
	case DimensionInstitute:
		s.InstituteIDs = append(s.InstituteIDs, id)
	case DimensionDepartment:
		s.DepartmentIDs = append(s.DepartmentIDs, id)
	case DimensionWing:
		s.WingIDs = append(s.WingIDs, id)
	case DimensionSubject:
		s.SubjectIDs = append(s.SubjectIDs, id)
	}
}

func (s Scope) Contains(d Dimension, id int64) bool {
	for _, v := range s.IDs(d) {
		if v == id {
			return true
		}
	}
	return false
}

type Employee struct {
	ID          int64  `json:"id"`
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Memberships Scope  `json:"memberships"`
}

type EmployeeRef struct {
	ID   int64  `json:"id"`
	Code int    `json:"code"`
	Name string `json:"name"`
}

type AppraisalType struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Category    Category `json:"category"`
	Permitted   Scope    `json:"permitted"`
	ScaleID     int64    `json:"scaleId,omitempty"`
}

type EvaluatorProfile struct {
	UserID       int64 `json:"userId"`
	EmployeeCode int   `json:"employeeCode,omitempty"`
	IsAssessor   bool  `json:"isAssessor"`
	IsInspector  bool  `json:"isInspector"`
	Assessor     Scope `json:"assessor"`
	Inspector    Scope `json:"inspector"`
}

// HasEmployeeCode reports whether the profile carries a code in the valid range.
func (p EvaluatorProfile) HasEmployeeCode() bool {
	return p.EmployeeCode >= MinEmployeeCode && p.EmployeeCode <= MaxEmployeeCode
}

type Period struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	IsActive  bool      `json:"isActive"`
}

// Contains compares calendar days; both window bounds are inclusive.
func (p Period) Contains(at time.Time) bool {
	return withinDays(at, p.StartDate, p.EndDate)
}

type Schedule struct {
	ID              int64     `json:"id"`
	PeriodID        int64     `json:"periodId"`
	AppraisalTypeID int64     `json:"appraisalTypeId"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	Description     string    `json:"description,omitempty"`
}

func (s Schedule) OpenAt(at time.Time) bool {
	return withinDays(at, s.StartDate, s.EndDate)
}

type ScaleItem struct {
	ID             int64  `json:"id"`
	Statement      string `json:"statement"`
	MaxOptionValue int    `json:"maxOptionValue"`
}

func withinDays(at, start, end time.Time) bool {
	day := dateOf(at)
	return !day.Before(dateOf(start)) && !day.After(dateOf(end))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
