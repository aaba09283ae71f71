package scoring

import (
	"fmt"
	"sort"

	"acr/internal/domain/appraisal"
)

// IntegrityWarnings flags histories where attempt numbers and timestamps disagree:
// a lower attempt recorded after a higher one, or an attempt number used twice.
// Attempt number stays authoritative for "latest"; these are only reported.
func IntegrityWarnings(totals []appraisal.Total) []string {
	byCell := map[CellKey][]appraisal.Total{}
	for _, t := range totals {
		k := cellKey(t)
		byCell[k] = append(byCell[k], t)
	}

	keys := make([]CellKey, 0, len(byCell))
	for k := range byCell {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].EmployeeID != keys[j].EmployeeID {
			return keys[i].EmployeeID < keys[j].EmployeeID
		}
		return keys[i].AppraisalTypeID < keys[j].AppraisalTypeID
	})

	var warnings []string
	for _, k := range keys {
		rows := byCell[k]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].AttemptNo < rows[j].AttemptNo })
		for i := 1; i < len(rows); i++ {
			prev, cur := rows[i-1], rows[i]
			if prev.AttemptNo == cur.AttemptNo {
				warnings = append(warnings, fmt.Sprintf(
					"employee %d type %d: attempt %d recorded more than once",
					k.EmployeeID, k.AppraisalTypeID, cur.AttemptNo))
				continue
			}
			if !prev.CreatedAt.IsZero() && !cur.CreatedAt.IsZero() && prev.CreatedAt.After(cur.CreatedAt) {
				warnings = append(warnings, fmt.Sprintf(
					"employee %d type %d: attempt %d recorded after attempt %d",
					k.EmployeeID, k.AppraisalTypeID, prev.AttemptNo, cur.AttemptNo))
			}
		}
	}
	return warnings
}
