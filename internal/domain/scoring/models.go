package scoring

import "acr/internal/domain/directory"

type CellKey struct {
	EmployeeID      int64
	AppraisalTypeID int64
}

type Cell struct {
	Text    string `json:"text"`
	Subtext string `json:"subtext,omitempty"`
}

// Report is the raw aggregation keyed by ids. Universes hold exactly the employees
// and types present in the aggregated history, in ascending id order.
type Report struct {
	Strategy         string           `json:"strategy"`
	Label            string           `json:"label"`
	Requested        string           `json:"requested,omitempty"`
	Cells            map[CellKey]Cell `json:"-"`
	RowTotals        map[int64]Cell   `json:"-"`
	EmployeeIDs      []int64          `json:"employeeIds"`
	AppraisalTypeIDs []int64          `json:"appraisalTypeIds"`
	Warnings         []string         `json:"warnings,omitempty"`
}

func (r Report) Cell(employeeID, appraisalTypeID int64) (Cell, bool) {
	c, ok := r.Cells[CellKey{EmployeeID: employeeID, AppraisalTypeID: appraisalTypeID}]
	return c, ok
}

// FellBack reports whether the requested strategy was unknown.
func (r Report) FellBack() bool {
	return r.Requested != "" && r.Requested != r.Strategy
}

type Query struct {
	PeriodID       int64
	Strategy       string
	InstituteIDs   []int64
	JobCategoryIDs []int64
}

type Column struct {
	AppraisalTypeID int64  `json:"appraisalTypeId"`
	Name            string `json:"name"`
}

type Row struct {
	Employee directory.EmployeeRef `json:"employee"`
	Cells    []Cell                `json:"cells"`
	Total    Cell                  `json:"total"`
}

// Consolidated is a Report laid out for display: columns and rows ordered by name.
// Row.Cells align with Columns; a missing pair is an empty Cell.
type Consolidated struct {
	PeriodID int64    `json:"periodId"`
	Strategy string   `json:"strategy"`
	Label    string   `json:"label"`
	Columns  []Column `json:"columns"`
	Rows     []Row    `json:"rows"`
	Warnings []string `json:"warnings,omitempty"`
}

type StrategyInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}
