package scoring

import (
	"sort"
	"strconv"
	"strings"

	"acr/internal/domain/appraisal"
	"acr/internal/domain/directory"
)

type TotalsQuery struct {
	PeriodID       int64
	InstituteIDs   []int64
	JobCategoryIDs []int64
	Search         string
}

type EmployeeTotals struct {
	Employee      directory.EmployeeRef `json:"employee"`
	Records       []appraisal.Total     `json:"records"`
	MaxScore      float64               `json:"maxScore"`
	ObtainedScore float64               `json:"obtainedScore"`
	Percent       string                `json:"percent"`
}

// GroupTotals lists every attempt per employee, highest attempt first, with the
// employee's Σmax and Σobtained. search matches a name substring or a code
// substring, case-insensitively.
func GroupTotals(totals []appraisal.Total, refs map[int64]directory.EmployeeRef, search string) []EmployeeTotals {
	search = strings.ToLower(strings.TrimSpace(search))
	byEmployee := map[int64]*EmployeeTotals{}
	for _, t := range totals {
		ref, ok := refs[t.EmployeeID]
		if !ok {
			ref = directory.EmployeeRef{ID: t.EmployeeID}
		}
		if search != "" && !matchesSearch(ref, search) {
			continue
		}
		g, ok := byEmployee[t.EmployeeID]
		if !ok {
			g = &EmployeeTotals{Employee: ref}
			byEmployee[t.EmployeeID] = g
		}
		g.Records = append(g.Records, t)
		g.MaxScore += t.MaxScore
		g.ObtainedScore += t.ObtainedScore
	}

	out := make([]EmployeeTotals, 0, len(byEmployee))
	for _, g := range byEmployee {
		sort.SliceStable(g.Records, func(i, j int) bool {
			if g.Records[i].AttemptNo != g.Records[j].AttemptNo {
				return g.Records[i].AttemptNo > g.Records[j].AttemptNo
			}
			return g.Records[i].AppraisalTypeID < g.Records[j].AppraisalTypeID
		})
		g.Percent = formatPercent(percent(g.ObtainedScore, g.MaxScore))
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Employee.Name != out[j].Employee.Name {
			return out[i].Employee.Name < out[j].Employee.Name
		}
		return out[i].Employee.ID < out[j].Employee.ID
	})
	return out
}

func matchesSearch(ref directory.EmployeeRef, search string) bool {
	if strings.Contains(strings.ToLower(ref.Name), search) {
		return true
	}
	return ref.Code > 0 && strings.Contains(strconv.Itoa(ref.Code), search)
}
