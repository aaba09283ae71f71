package directory

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	StoreAPI
	flagged    *Period
	periods    []Period
	searched   string
	limit      int
	searchHits []EmployeeRef
}

func (f *fakeStore) FlaggedActivePeriod(ctx context.Context) (Period, error) {
	if f.flagged == nil {
		return Period{}, ErrPeriodNotFound
	}
	return *f.flagged, nil
}

func (f *fakeStore) PeriodContaining(ctx context.Context, at time.Time) (Period, error) {
	for _, p := range f.periods {
		if p.Contains(at) {
			return p, nil
		}
	}
	return Period{}, ErrPeriodNotFound
}

func (f *fakeStore) SearchEmployees(ctx context.Context, query string, limit int) ([]EmployeeRef, error) {
	f.searched = query
	f.limit = limit
	return f.searchHits, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestActivePeriodPrefersFlag(t *testing.T) {
	store := &fakeStore{
		flagged: &Period{ID: 9, IsActive: true},
		periods: []Period{{ID: 1, StartDate: day(2024, 1, 1), EndDate: day(2030, 1, 1)}},
	}
	svc := NewService(store, nil)
	p, err := svc.ActivePeriod(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 9 {
		t.Fatalf("expected flagged period 9, got %d", p.ID)
	}
}

func TestActivePeriodFallsBackToWindow(t *testing.T) {
	store := &fakeStore{periods: []Period{
		{ID: 1, StartDate: day(2023, 4, 1), EndDate: day(2024, 3, 31)},
		{ID: 2, StartDate: day(2024, 4, 1), EndDate: day(2025, 3, 31)},
	}}
	svc := NewService(store, nil).WithClock(func() time.Time {
		return time.Date(2025, 3, 31, 18, 30, 0, 0, time.UTC)
	})
	p, err := svc.ActivePeriod(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 2 {
		t.Fatalf("expected period 2, got %d", p.ID)
	}
}

func TestActivePeriodNone(t *testing.T) {
	svc := NewService(&fakeStore{}, nil)
	if _, err := svc.ActivePeriod(context.Background()); !errors.Is(err, ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}
}

func TestLookupEmployeesLimits(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil)

	if _, err := svc.LookupEmployees(context.Background(), "  ana ", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.searched != "ana" || store.limit != DefaultLookupLimit {
		t.Fatalf("expected trimmed query with default limit, got %q %d", store.searched, store.limit)
	}

	if _, err := svc.LookupEmployees(context.Background(), "ana", 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.limit != MaxLookupLimit {
		t.Fatalf("expected clamp to %d, got %d", MaxLookupLimit, store.limit)
	}
}

func TestLookupEmployeesBlankQuery(t *testing.T) {
	store := &fakeStore{}
	refs, err := NewService(store, nil).LookupEmployees(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 0 || store.searched != "" {
		t.Fatalf("expected no search for blank query")
	}
}

func TestScheduleOpenAtInclusiveDays(t *testing.T) {
	sc := Schedule{StartDate: day(2024, 5, 1), EndDate: day(2024, 5, 10)}
	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2024, 4, 30, 23, 59, 0, 0, time.UTC), false},
		{time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC), true},
		{time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := sc.OpenAt(tc.at); got != tc.want {
			t.Fatalf("OpenAt(%s): expected %v, got %v", tc.at, tc.want, got)
		}
	}
}

func TestScopeAddAndContains(t *testing.T) {
	var s Scope
	s.Add(DimensionWing, 4)
	s.Add(DimensionSubject, 8)
	if !s.Contains(DimensionWing, 4) || s.Contains(DimensionWing, 8) {
		t.Fatalf("unexpected wing membership: %+v", s)
	}
	if len(s.IDs(DimensionSubject)) != 1 {
		t.Fatalf("expected one subject, got %v", s.SubjectIDs)
	}
	if s.IDs(Dimension("unknown")) != nil {
		t.Fatal("expected nil for unknown dimension")
	}
}

func TestHasEmployeeCodeRange(t *testing.T) {
	cases := map[int]bool{0: false, 1: true, 99999: true, 100000: false, -4: false}
	for code, want := range cases {
		if got := (EvaluatorProfile{EmployeeCode: code}).HasEmployeeCode(); got != want {
			t.Fatalf("code %d: expected %v, got %v", code, want, got)
		}
	}
}

func TestCategoryNames(t *testing.T) {
	if CategoryInspection.String() != "inspection" || Category(7).String() != "unknown" {
		t.Fatalf("unexpected names %q %q", CategoryInspection.String(), Category(7).String())
	}
	if !CategorySelf.Valid() || Category(0).Valid() || Category(4).Valid() {
		t.Fatal("unexpected validity")
	}
}
