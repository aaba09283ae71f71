package criteria

const (
	MatchJobCategories = "MATCH_JOB_CATEGORIES"
	MatchInstitutes    = "MATCH_INSTITUTES"
	MatchWings         = "MATCH_WINGS"
	MatchDepartments   = "MATCH_DEPARTMENTS"
	MatchSubjects      = "MATCH_SUBJECTS"
	ExcludeSelf        = "EXCLUDE_SELF"
)

// UnregisteredDefault is the value of a criterion nobody has registered.
const UnregisteredDefault = true
