package criteria

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

type memStore struct {
	registered []Criterion
	overrides  map[int64]map[string]bool
}

func newMemStore(registered ...Criterion) *memStore {
	return &memStore{registered: registered, overrides: map[int64]map[string]bool{}}
}

func (m *memStore) Criteria(ctx context.Context) ([]Criterion, error) {
	return m.registered, nil
}

func (m *memStore) Overrides(ctx context.Context, appraisalTypeID int64) (map[string]bool, error) {
	out := map[string]bool{}
	for k, v := range m.overrides[appraisalTypeID] {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) UpsertOverride(ctx context.Context, appraisalTypeID int64, name string, value bool) error {
	if m.overrides[appraisalTypeID] == nil {
		m.overrides[appraisalTypeID] = map[string]bool{}
	}
	m.overrides[appraisalTypeID][name] = value
	return nil
}

func TestSettingsPrecedence(t *testing.T) {
	store := newMemStore(
		Criterion{Name: MatchWings, Default: false},
		Criterion{Name: MatchInstitutes, Default: true},
	)
	store.overrides[7] = map[string]bool{MatchInstitutes: false}
	svc := NewService(store, nil)

	settings, err := svc.Settings(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Enabled(MatchInstitutes) {
		t.Fatal("expected override to disable MATCH_INSTITUTES")
	}
	if settings.Enabled(MatchWings) {
		t.Fatal("expected default false for MATCH_WINGS")
	}
	if !settings.Enabled(MatchSubjects) {
		t.Fatal("expected unregistered criterion to be true")
	}
}

func TestSettingsIgnoresOtherTypes(t *testing.T) {
	store := newMemStore(Criterion{Name: ExcludeSelf, Default: true})
	store.overrides[1] = map[string]bool{ExcludeSelf: false}
	settings, err := NewService(store, nil).Settings(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !settings.Enabled(ExcludeSelf) {
		t.Fatal("expected default for type without override")
	}
}

func TestListMarksOverrides(t *testing.T) {
	store := newMemStore(Criterion{Name: MatchWings}, Criterion{Name: MatchSubjects})
	store.overrides[3] = map[string]bool{MatchSubjects: true, "LEGACY": true}
	list, err := NewService(store, nil).List(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 criteria, got %d", len(list))
	}
	if list[0].Overridden || !list[1].Overridden || !list[1].Value {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestSetOverrideUnknown(t *testing.T) {
	svc := NewService(newMemStore(Criterion{Name: MatchWings}), nil)
	err := svc.SetOverride(context.Background(), 1, "NOPE", true)
	if !errors.Is(err, ErrUnknownCriterion) {
		t.Fatalf("expected ErrUnknownCriterion, got %v", err)
	}
}

func TestSetOverrideNormalisesName(t *testing.T) {
	store := newMemStore(Criterion{Name: MatchWings})
	svc := NewService(store, nil)
	if err := svc.SetOverride(context.Background(), 4, " match_wings ", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !store.overrides[4][MatchWings] {
		t.Fatalf("expected override stored, got %+v", store.overrides)
	}
}

func TestSettingsValuesIsCopy(t *testing.T) {
	s := NewSettings(1, map[string]bool{ExcludeSelf: true})
	v := s.Values()
	v[ExcludeSelf] = false
	if !s.Enabled(ExcludeSelf) {
		t.Fatal("expected settings to be immutable through Values")
	}
}

func TestTranslateOverrideErr(t *testing.T) {
	err := translateOverrideErr(&pgconn.PgError{Code: "23503", ConstraintName: "criteria_overrides_appraisal_type_id_fkey"})
	if !errors.Is(err, ErrAppraisalTypeNotFound) {
		t.Fatalf("expected ErrAppraisalTypeNotFound, got %v", err)
	}
	err = translateOverrideErr(&pgconn.PgError{Code: "23503", ConstraintName: "criteria_overrides_name_fkey"})
	if !errors.Is(err, ErrUnknownCriterion) {
		t.Fatalf("expected ErrUnknownCriterion, got %v", err)
	}
	plain := errors.New("boom")
	if translateOverrideErr(plain) != plain {
		t.Fatal("expected other errors untouched")
	}
	if translateOverrideErr(nil) != nil {
		t.Fatal("expected nil")
	}
}
