package criteria

type Criterion struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default"`
}

// Effective is a criterion as seen by one appraisal type.
type Effective struct {
	Criterion
	Value      bool `json:"value"`
	Overridden bool `json:"overridden"`
}

// Settings holds the resolved toggles of one appraisal type.
type Settings struct {
	AppraisalTypeID int64
	values          map[string]bool
}

func NewSettings(appraisalTypeID int64, values map[string]bool) Settings {
	copied := make(map[string]bool, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Settings{AppraisalTypeID: appraisalTypeID, values: copied}
}

func (s Settings) Enabled(name string) bool {
	v, ok := s.values[name]
	if !ok {
		return UnregisteredDefault
	}
	return v
}

func (s Settings) Values() map[string]bool {
	out := make(map[string]bool, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
