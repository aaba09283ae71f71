package assessee

import (
	"acr/internal/domain/criteria"
	"acr/internal/domain/directory"
)

// intersects reports whether a and b share an element. An empty side never matches.
func intersects[T comparable](a, b []T) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	set := make(map[T]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// narrow keeps the employees whose memberships along d intersect allowed.
func narrow(employees []directory.Employee, d directory.Dimension, allowed []int64) []directory.Employee {
	out := employees[:0:0]
	for _, e := range employees {
		if intersects(e.Memberships.IDs(d), allowed) {
			out = append(out, e)
		}
	}
	return out
}

type gate struct {
	criterion string
	dimension directory.Dimension
	allowed   []int64
}

// evaluatorGates lists the criteria-controlled narrowings in application order.
func evaluatorGates(category directory.Category, profile directory.EvaluatorProfile) []gate {
	role := profile.Assessor
	if category == directory.CategoryInspection {
		role = profile.Inspector
	}
	return []gate{
		{criteria.MatchJobCategories, directory.DimensionJobCategory, role.JobCategoryIDs},
		{criteria.MatchInstitutes, directory.DimensionInstitute, role.InstituteIDs},
		// Wings, departments and subjects read the assessor scope for inspections too.
		{criteria.MatchWings, directory.DimensionWing, profile.Assessor.WingIDs},
		{criteria.MatchDepartments, directory.DimensionDepartment, profile.Assessor.DepartmentIDs},
		{criteria.MatchSubjects, directory.DimensionSubject, profile.Assessor.SubjectIDs},
	}
}
