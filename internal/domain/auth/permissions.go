package auth

const (
	PermPeriodsRead      = "periods.read"
	PermAssesseesRead    = "appraisal.assessees.read"
	PermAttemptsWrite    = "appraisal.attempts.write"
	PermExclusionsManage = "appraisal.exclusions.manage"
	PermEmployeesLookup  = "directory.employees.lookup"
	PermCriteriaRead     = "criteria.read"
	PermCriteriaWrite    = "criteria.write"
	PermReportsRead      = "reports.read"
	PermAuditRead        = "audit.read"
)

var DefaultPermissions = []string{
	PermPeriodsRead,
	PermAssesseesRead,
	PermAttemptsWrite,
	PermExclusionsManage,
	PermEmployeesLookup,
	PermCriteriaRead,
	PermCriteriaWrite,
	PermReportsRead,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEvaluator: {
		PermPeriodsRead,
		PermAssesseesRead,
		PermAttemptsWrite,
		PermExclusionsManage,
		PermEmployeesLookup,
		PermCriteriaRead,
	},
	RoleReviewer: {
		PermPeriodsRead,
		PermCriteriaRead,
		PermReportsRead,
	},
	RoleAdmin: DefaultPermissions,
}
