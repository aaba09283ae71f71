package directory

// Category decides which branch of assessee resolution an appraisal type follows.
type Category int

const (
	CategorySelf       Category = 1
	CategoryPeer       Category = 2
	CategoryInspection Category = 3
)

func (c Category) String() string {
	switch c {
	case CategorySelf:
		return "self"
	case CategoryPeer:
		return "peer"
	case CategoryInspection:
		return "inspection"
	default:
		return "unknown"
	}
}

func (c Category) Valid() bool {
	return c >= CategorySelf && c <= CategoryInspection
}

// Dimension names one organisational axis an employee can belong to.
type Dimension string

const (
	DimensionJobCategory Dimension = "job_category"
	DimensionInstitute   Dimension = "institute"
	DimensionDepartment  Dimension = "department"
	DimensionWing        Dimension = "wing"
	DimensionSubject     Dimension = "subject"
)

const (
	RoleAssessor  = "assessor"
	RoleInspector = "inspector"
)

const (
	MinEmployeeCode = 1
	MaxEmployeeCode = 99999
)
