package appraisal

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"acr/internal/domain/directory"
)

type memStore struct {
	mu        sync.Mutex
	locks     map[AttemptKey]*sync.Mutex
	totals    []Total
	items     []ItemScore
	failTotal error
}

func newMemStore() *memStore {
	return &memStore{locks: map[AttemptKey]*sync.Mutex{}}
}

func (m *memStore) keyLock(key AttemptKey) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

func (m *memStore) WithAttemptLock(ctx context.Context, key AttemptKey, fn func(tx AttemptTx) error) error {
	l := m.keyLock(key)
	l.Lock()
	defer l.Unlock()

	tx := &memTx{store: m}
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, staged := range tx.totals {
		for _, existing := range m.totals {
			if existing.Key() == staged.Key() && existing.AttemptNo == staged.AttemptNo {
				return ErrDuplicateAttempt
			}
		}
	}
	m.totals = append(m.totals, tx.totals...)
	m.items = append(m.items, tx.items...)
	return nil
}

func (m *memStore) LatestTotals(ctx context.Context, periodID, appraisalTypeID int64, employeeIDs []int64) (map[int64]LastAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]LastAttempt{}
	for _, t := range m.totals {
		if t.PeriodID != periodID || t.AppraisalTypeID != appraisalTypeID {
			continue
		}
		if cur, ok := out[t.EmployeeID]; !ok || t.AttemptNo > cur.AttemptNo {
			out[t.EmployeeID] = LastAttempt{AttemptNo: t.AttemptNo, CreatedAt: t.CreatedAt, ObtainedScore: t.ObtainedScore, MaxScore: t.MaxScore}
		}
	}
	return out, nil
}

func (m *memStore) ListTotals(ctx context.Context, filter TotalFilter) ([]Total, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Total
	for _, t := range m.totals {
		if t.PeriodID == filter.PeriodID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) attemptNos(key AttemptKey) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var nos []int
	for _, t := range m.totals {
		if t.Key() == key {
			nos = append(nos, t.AttemptNo)
		}
	}
	sort.Ints(nos)
	return nos
}

type memTx struct {
	store  *memStore
	totals []Total
	items  []ItemScore
}

func (tx *memTx) MaxAttemptNo(ctx context.Context, key AttemptKey) (int, error) {
	tx.store.mu.Lock()
	maxNo := 0
	for _, t := range tx.store.totals {
		if t.Key() == key && t.AttemptNo > maxNo {
			maxNo = t.AttemptNo
		}
	}
	tx.store.mu.Unlock()
	// Widen the read-then-write window so a missing lock would show up.
	runtime.Gosched()
	return maxNo, nil
}

func (tx *memTx) InsertItems(ctx context.Context, key AttemptKey, attemptNo int, items []ItemScore, recordedBy int64) error {
	tx.items = append(tx.items, items...)
	return nil
}

func (tx *memTx) InsertTotal(ctx context.Context, total Total) (time.Time, error) {
	if tx.store.failTotal != nil {
		return time.Time{}, tx.store.failTotal
	}
	total.CreatedAt = time.Now()
	tx.totals = append(tx.totals, total)
	return total.CreatedAt, nil
}

type fakeDirectory struct {
	periods   map[int64]directory.Period
	employees map[int64]directory.Employee
	types     map[int64]directory.AppraisalType
	scales    map[int64][]directory.ScaleItem
}

func (f fakeDirectory) Period(ctx context.Context, id int64) (directory.Period, error) {
	p, ok := f.periods[id]
	if !ok {
		return directory.Period{}, directory.ErrPeriodNotFound
	}
	return p, nil
}

func (f fakeDirectory) Employee(ctx context.Context, id int64) (directory.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return directory.Employee{}, directory.ErrEmployeeNotFound
	}
	return e, nil
}

func (f fakeDirectory) AppraisalType(ctx context.Context, id int64) (directory.AppraisalType, error) {
	t, ok := f.types[id]
	if !ok {
		return directory.AppraisalType{}, directory.ErrAppraisalTypeNotFound
	}
	return t, nil
}

func (f fakeDirectory) ScaleItems(ctx context.Context, scaleID int64) ([]directory.ScaleItem, error) {
	return f.scales[scaleID], nil
}

func testDirectory() fakeDirectory {
	return fakeDirectory{
		periods: map[int64]directory.Period{1: {ID: 1, Name: "2026"}},
		employees: map[int64]directory.Employee{
			10: {ID: 10, Code: 100, Name: "Asha", Memberships: directory.Scope{InstituteIDs: []int64{1}, JobCategoryIDs: []int64{2}}},
			11: {ID: 11, Code: 101, Name: "Bilal", Memberships: directory.Scope{InstituteIDs: []int64{1}, JobCategoryIDs: []int64{2}}},
		},
		types: map[int64]directory.AppraisalType{
			3: {ID: 3, Name: "peer", Category: directory.CategoryPeer, ScaleID: 8},
			4: {ID: 4, Name: "noscale", Category: directory.CategoryPeer},
		},
		scales: map[int64][]directory.ScaleItem{
			8: {{ID: 81, MaxOptionValue: 5}, {ID: 82, MaxOptionValue: 5}, {ID: 83, MaxOptionValue: 5}},
		},
	}
}

func request(employeeID int64, items ...ItemScore) RecordRequest {
	return RecordRequest{
		AttemptKey:    AttemptKey{PeriodID: 1, AppraisalTypeID: 3, EmployeeID: employeeID},
		InstituteID:   1,
		JobCategoryID: 2,
		Items:         items,
		RecordedBy:    42,
	}
}

func TestRecordAttemptSequentialNumbers(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, testDirectory(), nil)

	first, err := svc.RecordAttempt(context.Background(), request(10, ItemScore{ItemID: 81, MaxScore: 10, ObtainedScore: 8}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.RecordAttempt(context.Background(), request(10, ItemScore{ItemID: 81, MaxScore: 4, ObtainedScore: 3}, ItemScore{ItemID: 82, MaxScore: 6, ObtainedScore: 3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.AttemptNo != 1 || second.AttemptNo != 2 {
		t.Fatalf("expected attempts 1 and 2, got %d and %d", first.AttemptNo, second.AttemptNo)
	}
	if second.MaxScore != 10 || second.ObtainedScore != 6 {
		t.Fatalf("expected 6/10, got %v/%v", second.ObtainedScore, second.MaxScore)
	}
	if len(store.items) != 3 {
		t.Fatalf("expected 3 item rows, got %d", len(store.items))
	}
}

func TestRecordAttemptConcurrentPairGetsOneAndTwo(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, testDirectory(), nil)

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.RecordAttempt(context.Background(), request(10, ItemScore{ItemID: 81, MaxScore: 10, ObtainedScore: 5}))
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	nos := store.attemptNos(AttemptKey{PeriodID: 1, AppraisalTypeID: 3, EmployeeID: 10})
	if len(nos) != 2 || nos[0] != 1 || nos[1] != 2 {
		t.Fatalf("expected attempts [1 2], got %v", nos)
	}
}

func TestRecordAttemptManyConcurrentWritersAreGapless(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, testDirectory(), nil)
	const writers = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordAttempt(context.Background(), request(11, ItemScore{ItemID: 81, MaxScore: 1, ObtainedScore: 1})); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	nos := store.attemptNos(AttemptKey{PeriodID: 1, AppraisalTypeID: 3, EmployeeID: 11})
	if len(nos) != writers {
		t.Fatalf("expected %d attempts, got %d", writers, len(nos))
	}
	for i, no := range nos {
		if no != i+1 {
			t.Fatalf("expected gapless numbering, got %v", nos)
		}
	}
}

func TestRecordAttemptKeysAreIndependent(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, testDirectory(), nil)
	a, err := svc.RecordAttempt(context.Background(), request(10, ItemScore{ItemID: 81, MaxScore: 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.RecordAttempt(context.Background(), request(11, ItemScore{ItemID: 81, MaxScore: 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.AttemptNo != 1 || b.AttemptNo != 1 {
		t.Fatalf("expected both first attempts, got %d and %d", a.AttemptNo, b.AttemptNo)
	}
}

func TestRecordAttemptFailureWritesNothing(t *testing.T) {
	store := newMemStore()
	store.failTotal = errors.New("disk full")
	svc := NewService(store, testDirectory(), nil)

	if _, err := svc.RecordAttempt(context.Background(), request(10, ItemScore{ItemID: 81, MaxScore: 5, ObtainedScore: 2})); err == nil {
		t.Fatal("expected error")
	}
	if len(store.items) != 0 || len(store.totals) != 0 {
		t.Fatalf("expected no rows, got %d items %d totals", len(store.items), len(store.totals))
	}

	store.failTotal = nil
	receipt, err := svc.RecordAttempt(context.Background(), request(10, ItemScore{ItemID: 81, MaxScore: 5, ObtainedScore: 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.AttemptNo != 1 {
		t.Fatalf("expected attempt 1 after failed write, got %d", receipt.AttemptNo)
	}
}

func TestRecordAttemptRejections(t *testing.T) {
	cases := []struct {
		name string
		req  RecordRequest
		want error
	}{
		{"no items", request(10), ErrNoItems},
		{"obtained above max", request(10, ItemScore{ItemID: 81, MaxScore: 3, ObtainedScore: 4}), ErrObtainedExceedsMax},
		{"negative", request(10, ItemScore{ItemID: 81, MaxScore: 3, ObtainedScore: -1}), ErrInvalidScore},
		{"duplicate item", request(10, ItemScore{ItemID: 81, MaxScore: 3}, ItemScore{ItemID: 81, MaxScore: 3}), ErrDuplicateItem},
		{"missing key", RecordRequest{Items: []ItemScore{{ItemID: 81}}}, ErrInvalidKey},
		{"unknown employee", request(99, ItemScore{ItemID: 81, MaxScore: 1}), directory.ErrEmployeeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			_, err := NewService(store, testDirectory(), nil).RecordAttempt(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(store.totals) != 0 {
				t.Fatal("expected nothing written")
			}
		})
	}
}

func TestRecordAttemptRejectsForeignInstitute(t *testing.T) {
	req := request(10, ItemScore{ItemID: 81, MaxScore: 1})
	req.InstituteID = 7
	_, err := NewService(newMemStore(), testDirectory(), nil).RecordAttempt(context.Background(), req)
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}

	req = request(10, ItemScore{ItemID: 81, MaxScore: 1})
	req.JobCategoryID = 9
	_, err = NewService(newMemStore(), testDirectory(), nil).RecordAttempt(context.Background(), req)
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection for job category, got %v", err)
	}
}

func TestRecordAnswersAppliesNotApplicableRule(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, testDirectory(), nil)
	receipt, err := svc.RecordAnswers(context.Background(), AnswerRequest{
		AttemptKey:    AttemptKey{PeriodID: 1, AppraisalTypeID: 3, EmployeeID: 10},
		InstituteID:   1,
		JobCategoryID: 2,
		Answers:       map[int64]int{81: 4, 82: 0, 83: 5},
		RecordedBy:    42,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.MaxScore != 10 || receipt.ObtainedScore != 9 {
		t.Fatalf("expected 9/10, got %v/%v", receipt.ObtainedScore, receipt.MaxScore)
	}
}

func TestRecordAnswersNeedsScale(t *testing.T) {
	_, err := NewService(newMemStore(), testDirectory(), nil).RecordAnswers(context.Background(), AnswerRequest{
		AttemptKey: AttemptKey{PeriodID: 1, AppraisalTypeID: 4, EmployeeID: 10},
		Answers:    map[int64]int{},
	})
	if !errors.Is(err, ErrScaleMissing) {
		t.Fatalf("expected ErrScaleMissing, got %v", err)
	}
}

func TestScoreAnswers(t *testing.T) {
	items := []directory.ScaleItem{{ID: 1, MaxOptionValue: 4}, {ID: 2, MaxOptionValue: 4}}

	if _, err := ScoreAnswers(items, map[int64]int{1: 3}); !errors.Is(err, ErrUnansweredItems) {
		t.Fatalf("expected ErrUnansweredItems, got %v", err)
	}
	if _, err := ScoreAnswers(items, map[int64]int{1: 3, 2: 1, 9: 1}); !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if _, err := ScoreAnswers(items, map[int64]int{1: 5, 2: 1}); !errors.Is(err, ErrObtainedExceedsMax) {
		t.Fatalf("expected ErrObtainedExceedsMax, got %v", err)
	}
	if _, err := ScoreAnswers(nil, nil); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}

	scores, err := ScoreAnswers(items, map[int64]int{1: 0, 2: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scores[0].MaxScore != 0 || scores[1].MaxScore != 4 || scores[1].ObtainedScore != 4 {
		t.Fatalf("unexpected scores: %+v", scores)
	}
}

func TestTranslateWriteErr(t *testing.T) {
	err := translateWriteErr(&pgconn.PgError{Code: "23505", ConstraintName: "appraisal_totals_key"})
	if !errors.Is(err, ErrDuplicateAttempt) {
		t.Fatalf("expected ErrDuplicateAttempt, got %v", err)
	}
	err = translateWriteErr(&pgconn.PgError{Code: "23503", ConstraintName: "appraisal_totals_period_id_fkey"})
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	err = translateWriteErr(&pgconn.PgError{Code: "23514"})
	if !errors.Is(err, ErrObtainedExceedsMax) {
		t.Fatalf("expected ErrObtainedExceedsMax, got %v", err)
	}
	plain := errors.New("boom")
	if translateWriteErr(plain) != plain {
		t.Fatal("expected other errors untouched")
	}
	if translateWriteErr(nil) != nil {
		t.Fatal("expected nil")
	}
}

func TestRecordAttemptRejectsUnknownReferences(t *testing.T) {
	unknownPeriod := request(10, ItemScore{ItemID: 81, MaxScore: 5, ObtainedScore: 2})
	unknownPeriod.PeriodID = 999
	unknownType := request(10, ItemScore{ItemID: 81, MaxScore: 5, ObtainedScore: 2})
	unknownType.AppraisalTypeID = 77

	cases := []struct {
		name string
		req  RecordRequest
		want error
	}{
		{"unknown period", unknownPeriod, directory.ErrPeriodNotFound},
		{"unknown type", unknownType, directory.ErrAppraisalTypeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			_, err := NewService(store, testDirectory(), nil).RecordAttempt(context.Background(), tc.req)
			if !errors.Is(err, ErrUnknownReference) || !errors.Is(err, tc.want) {
				t.Fatalf("expected ErrUnknownReference wrapping %v, got %v", tc.want, err)
			}
			if len(store.totals) != 0 || len(store.items) != 0 {
				t.Fatal("expected nothing written")
			}
		})
	}
}

func TestRecordAnswersRejectsUnknownPeriod(t *testing.T) {
	_, err := NewService(newMemStore(), testDirectory(), nil).RecordAnswers(context.Background(), AnswerRequest{
		AttemptKey:    AttemptKey{PeriodID: 999, AppraisalTypeID: 3, EmployeeID: 10},
		InstituteID:   1,
		JobCategoryID: 2,
		Answers:       map[int64]int{81: 1, 82: 1, 83: 1},
	})
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestRecordAttemptRejectsItemsOffScale(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, testDirectory(), nil)
	_, err := svc.RecordAttempt(context.Background(), request(10,
		ItemScore{ItemID: 81, MaxScore: 5, ObtainedScore: 2},
		ItemScore{ItemID: 500, MaxScore: 50, ObtainedScore: 50},
	))
	if !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
	if len(store.totals) != 0 {
		t.Fatal("expected nothing written")
	}

	noScale := request(10, ItemScore{ItemID: 81, MaxScore: 5})
	noScale.AppraisalTypeID = 4
	if _, err := svc.RecordAttempt(context.Background(), noScale); !errors.Is(err, ErrScaleMissing) {
		t.Fatalf("expected ErrScaleMissing, got %v", err)
	}
}
