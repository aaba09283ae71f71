package scoring

import (
	"fmt"
	"sort"

	"acr/internal/domain/appraisal"
)

const (
	StrategyLatestObtMax = "latest_obt_max"
	StrategyLatestPct    = "latest_pct"
	StrategyAvgPctAll    = "avg_pct_all"
	StrategyBestPctAll   = "best_pct_all"

	DefaultStrategy = StrategyLatestObtMax
)

type cellsFunc func(totals []appraisal.Total) (map[CellKey]Cell, map[int64]Cell)

type strategy struct {
	name  string
	label string
	fn    cellsFunc
}

var strategies = []strategy{
	{StrategyLatestObtMax, "Obt/Max (Latest)", latestObtMax},
	{StrategyLatestPct, "Percentage (Latest)", latestPct},
	{StrategyAvgPctAll, "Average % (All Appraisals)", avgPctAll},
	{StrategyBestPctAll, "Best % (All Appraisals)", bestPctAll},
}

func lookup(name string) (strategy, bool) {
	for _, s := range strategies {
		if s.name == name {
			return s, true
		}
	}
	return strategy{}, false
}

func Strategies() []StrategyInfo {
	out := make([]StrategyInfo, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, StrategyInfo{Name: s.name, Label: s.label, Default: s.name == DefaultStrategy})
	}
	return out
}

// Aggregate reduces the totals under the named strategy. Unknown names use
// DefaultStrategy; Report.Requested keeps what was asked for.
func Aggregate(totals []appraisal.Total, strategyName string) Report {
	s, ok := lookup(strategyName)
	if !ok {
		s, _ = lookup(DefaultStrategy)
	}
	cells, rows := s.fn(totals)
	employees, types := universes(totals)
	return Report{
		Strategy:         s.name,
		Label:            s.label,
		Requested:        strategyName,
		Cells:            cells,
		RowTotals:        rows,
		EmployeeIDs:      employees,
		AppraisalTypeIDs: types,
		Warnings:         IntegrityWarnings(totals),
	}
}

func universes(totals []appraisal.Total) ([]int64, []int64) {
	employees := map[int64]bool{}
	types := map[int64]bool{}
	for _, t := range totals {
		employees[t.EmployeeID] = true
		types[t.AppraisalTypeID] = true
	}
	return sortedKeys(employees), sortedKeys(types)
}

func sortedKeys(m map[int64]bool) []int64 {
	out := make([]int64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func cellKey(t appraisal.Total) CellKey {
	return CellKey{EmployeeID: t.EmployeeID, AppraisalTypeID: t.AppraisalTypeID}
}

// latestRows keeps, per (employee, type), the row with the highest attempt number.
func latestRows(totals []appraisal.Total) map[CellKey]appraisal.Total {
	latest := make(map[CellKey]appraisal.Total)
	for _, t := range totals {
		k := cellKey(t)
		if cur, ok := latest[k]; !ok || t.AttemptNo > cur.AttemptNo {
			latest[k] = t
		}
	}
	return latest
}

type sums struct {
	obtained float64
	max      float64
}

func (s *sums) add(t appraisal.Total) {
	s.obtained += t.ObtainedScore
	s.max += t.MaxScore
}

func latestSums(latest map[CellKey]appraisal.Total) map[int64]*sums {
	out := map[int64]*sums{}
	for k, t := range latest {
		s, ok := out[k.EmployeeID]
		if !ok {
			s = &sums{}
			out[k.EmployeeID] = s
		}
		s.add(t)
	}
	return out
}

func latestObtMax(totals []appraisal.Total) (map[CellKey]Cell, map[int64]Cell) {
	latest := latestRows(totals)
	cells := make(map[CellKey]Cell, len(latest))
	for k, t := range latest {
		cells[k] = Cell{Text: formatRatio(t.ObtainedScore, t.MaxScore), Subtext: fmt.Sprintf("Appraisal #%d", t.AttemptNo)}
	}
	rows := map[int64]Cell{}
	for employeeID, s := range latestSums(latest) {
		rows[employeeID] = Cell{Text: formatRatio(s.obtained, s.max), Subtext: "Σ latest"}
	}
	return cells, rows
}

func latestPct(totals []appraisal.Total) (map[CellKey]Cell, map[int64]Cell) {
	latest := latestRows(totals)
	cells := make(map[CellKey]Cell, len(latest))
	for k, t := range latest {
		cells[k] = Cell{Text: formatPercent(percent(t.ObtainedScore, t.MaxScore)), Subtext: fmt.Sprintf("Appraisal #%d", t.AttemptNo)}
	}
	rows := map[int64]Cell{}
	for employeeID, s := range latestSums(latest) {
		rows[employeeID] = Cell{Text: formatPercent(percent(s.obtained, s.max)), Subtext: "Overall (latest)"}
	}
	return cells, rows
}

// avgPctAll averages per-attempt percentages per cell, skipping attempts with max 0.
// The row total is the weighted Σobtained/Σmax over every attempt of the employee.
func avgPctAll(totals []appraisal.Total) (map[CellKey]Cell, map[int64]Cell) {
	pcts := map[CellKey][]float64{}
	seen := map[CellKey]bool{}
	overall := map[int64]*sums{}
	for _, t := range totals {
		k := cellKey(t)
		seen[k] = true
		if t.MaxScore > 0 {
			pcts[k] = append(pcts[k], percent(t.ObtainedScore, t.MaxScore))
		}
		s, ok := overall[t.EmployeeID]
		if !ok {
			s = &sums{}
			overall[t.EmployeeID] = s
		}
		s.add(t)
	}

	cells := make(map[CellKey]Cell, len(seen))
	for k := range seen {
		included := pcts[k]
		cells[k] = Cell{Text: formatPercent(mean(included)), Subtext: fmt.Sprintf("Avg of %d", len(included))}
	}
	rows := make(map[int64]Cell, len(overall))
	for employeeID, s := range overall {
		rows[employeeID] = Cell{Text: formatPercent(percent(s.obtained, s.max)), Subtext: "Overall (all appraisals)"}
	}
	return cells, rows
}

// bestPctAll takes the best qualifying percentage per cell (0 when none qualify).
// The row total is the plain mean of the employee's cell values.
func bestPctAll(totals []appraisal.Total) (map[CellKey]Cell, map[int64]Cell) {
	best := map[CellKey]float64{}
	for _, t := range totals {
		k := cellKey(t)
		cur, ok := best[k]
		if !ok {
			best[k] = 0
		}
		if t.MaxScore <= 0 {
			continue
		}
		if p := percent(t.ObtainedScore, t.MaxScore); !ok || p > cur {
			best[k] = p
		}
	}

	cells := make(map[CellKey]Cell, len(best))
	byEmployee := map[int64][]float64{}
	for k, v := range best {
		cells[k] = Cell{Text: formatPercent(v), Subtext: "Best"}
		byEmployee[k.EmployeeID] = append(byEmployee[k.EmployeeID], v)
	}
	rows := make(map[int64]Cell, len(byEmployee))
	for employeeID, values := range byEmployee {
		sort.Float64s(values)
		rows[employeeID] = Cell{Text: formatPercent(mean(values)), Subtext: "Avg of best"}
	}
	return cells, rows
}
