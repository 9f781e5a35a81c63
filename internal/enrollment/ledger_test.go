package enrollment

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"empower/internal/course"
	"empower/internal/storage"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var errDiskFull = errors.New("disk full")

// faultyStore wraps a Store and fails reads or writes on demand.
type faultyStore struct {
	storage.Store
	failGet bool
	failSet bool
	sets    int32
}

func (s *faultyStore) Get(ctx context.Context, key string) (string, error) {
	if s.failGet {
		return "", errDiskFull
	}
	return s.Store.Get(ctx, key)
}

func (s *faultyStore) Set(ctx context.Context, key, value string) error {
	atomic.AddInt32(&s.sets, 1)
	if s.failSet {
		return errDiskFull
	}
	return s.Store.Set(ctx, key, value)
}

// slowStore sleeps inside Set and records whether two writes ever overlapped.
type slowStore struct {
	storage.Store
	inFlight int32
	overlap  int32
}

func (s *slowStore) Set(ctx context.Context, key, value string) error {
	if atomic.AddInt32(&s.inFlight, 1) > 1 {
		atomic.StoreInt32(&s.overlap, 1)
	}
	defer atomic.AddInt32(&s.inFlight, -1)
	time.Sleep(time.Millisecond)
	return s.Store.Set(ctx, key, value)
}

func newCatalog() *course.Manager {
	return course.NewManager(course.DefaultCourses(), zap.NewNop())
}

func newLedger(st storage.Store) *Ledger {
	return NewLedger(st, newCatalog(), zap.NewNop())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   []string
	}{
		{name: "missing", want: []string{}},
		{name: "empty array", stored: `[]`, want: []string{}},
		{name: "corrupt", stored: `{"Cooking":true`, want: []string{}},
		{name: "wrong shape", stored: `{"Cooking":true}`, want: []string{}},
		{name: "valid", stored: `["Sewing","Cooking"]`, want: []string{"Sewing", "Cooking"}},
		{name: "stale ids dropped", stored: `["Cooking","Pottery"]`, want: []string{"Cooking"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			st := storage.NewMemoryStore()
			if tt.stored != "" {
				_ = st.Set(ctx, storage.SelectedCoursesKey, tt.stored)
			}
			got := newLedger(st).Load(ctx)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_ReadFailureIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	_ = mem.Set(ctx, storage.SelectedCoursesKey, `["Cooking"]`)
	st := &faultyStore{Store: mem, failGet: true}

	l := newLedger(st)
	if got := l.Load(ctx); len(got) != 0 {
		t.Errorf("Load() = %v, want empty", got)
	}
	if st.sets != 0 {
		t.Errorf("Load() wrote %d times, want 0", st.sets)
	}
}

func TestLoad_StaleIDNotEnrolledOrPriced(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	_ = st.Set(ctx, storage.SelectedCoursesKey, `["Cooking","Child Minding","Pottery"]`)

	l := newLedger(st)
	l.Load(ctx)

	if l.IsEnrolled("Pottery") {
		t.Error("IsEnrolled(stale id) = true")
	}
	q := l.Quote()
	if q.Count != 2 || q.Subtotal != 1500 || q.TotalString() != "1425.00" {
		t.Errorf("Quote() = %+v, want 2 courses, 1500, 1425.00", q.View())
	}
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	st := &faultyStore{Store: storage.NewMemoryStore()}
	l := newLedger(st)

	enrolled, err := l.Enroll(ctx, "Cooking")
	if err != nil || !enrolled {
		t.Fatalf("Enroll() = %v, %v, want true, nil", enrolled, err)
	}
	if !l.IsEnrolled("Cooking") {
		t.Error("IsEnrolled() = false after Enroll")
	}

	// idempotent, but still one write per call
	if _, err := l.Enroll(ctx, "Cooking"); err != nil {
		t.Fatalf("second Enroll() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Cooking"}, l.Selected()); diff != "" {
		t.Errorf("Selected() mismatch (-want +got):\n%s", diff)
	}
	if st.sets != 2 {
		t.Errorf("writes = %d, want 2", st.sets)
	}
}

func TestEnroll_UnknownCourse(t *testing.T) {
	st := &faultyStore{Store: storage.NewMemoryStore()}
	l := newLedger(st)

	_, err := l.Enroll(context.Background(), "Pottery")
	if !errors.Is(err, ErrUnknownCourse) {
		t.Fatalf("Enroll(unknown) error = %v, want ErrUnknownCourse", err)
	}
	if st.sets != 0 {
		t.Errorf("writes = %d, want 0", st.sets)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	l := newLedger(storage.NewMemoryStore())
	for _, id := range []string{"Cooking", "Sewing"} {
		if _, err := l.Enroll(ctx, id); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.Remove(ctx, "Cooking")
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Sewing"}, got); diff != "" {
		t.Errorf("Remove() mismatch (-want +got):\n%s", diff)
	}

	// removing an absent course leaves the set unchanged
	got, err = l.Unenroll(ctx, "Cooking")
	if err != nil {
		t.Fatalf("Unenroll() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Sewing"}, got); diff != "" {
		t.Errorf("Unenroll() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnrollRemove_Inverse(t *testing.T) {
	ctx := context.Background()
	l := newLedger(storage.NewMemoryStore())
	_, _ = l.Enroll(ctx, "First Aid")
	before := l.Selected()

	_, _ = l.Enroll(ctx, "Cooking")
	after, _ := l.Remove(ctx, "Cooking")

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("enroll then remove changed the set (-before +after):\n%s", diff)
	}
}

func TestMutation_WriteFailure(t *testing.T) {
	ctx := context.Background()
	st := &faultyStore{Store: storage.NewMemoryStore()}
	l := newLedger(st)
	if _, err := l.Enroll(ctx, "Cooking"); err != nil {
		t.Fatal(err)
	}

	st.failSet = true

	enrolled, err := l.Enroll(ctx, "Sewing")
	if !IsPersistence(err) {
		t.Errorf("Enroll() error = %v, want PersistenceError", err)
	}
	if enrolled || l.IsEnrolled("Sewing") {
		t.Error("failed Enroll changed in-memory state")
	}

	if _, err := l.Remove(ctx, "Cooking"); !IsPersistence(err) {
		t.Errorf("Remove() error = %v, want PersistenceError", err)
	}
	if !l.IsEnrolled("Cooking") {
		t.Error("failed Remove changed in-memory state")
	}

	if err := l.Clear(ctx); !IsPersistence(err) {
		t.Errorf("Clear() error = %v, want PersistenceError", err)
	}
	if !errors.Is(l.Clear(ctx), errDiskFull) {
		t.Error("PersistenceError does not unwrap to the store error")
	}

	// memory and store still agree
	st.failSet = false
	if diff := cmp.Diff(l.Selected(), newLedger(st).Load(ctx)); diff != "" {
		t.Errorf("memory and store diverged (-memory +store):\n%s", diff)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStore()
	l := newLedger(st)
	_, _ = l.Enroll(ctx, "Cooking")
	_, _ = l.Enroll(ctx, "Sewing")

	if err := l.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := l.Selected(); len(got) != 0 {
		t.Errorf("Selected() after Clear = %v", got)
	}
	if got := newLedger(st).Load(ctx); len(got) != 0 {
		t.Errorf("Load() after Clear = %v", got)
	}
}

func TestQuote(t *testing.T) {
	ctx := context.Background()
	l := newLedger(storage.NewMemoryStore())

	steps := []struct {
		enroll string
		want   string
	}{
		{enroll: "Cooking", want: "750.00"},
		{enroll: "Child Minding", want: "1425.00"},
		{enroll: "Garden Maintaining", want: "2025.00"},
		{enroll: "First Aid", want: "3187.50"},
	}
	if got := l.Quote().TotalString(); got != "0.00" {
		t.Errorf("Quote() on empty = %s, want 0.00", got)
	}
	for _, s := range steps {
		_, _ = l.Enroll(ctx, s.enroll)
		if got := l.Quote().TotalString(); got != s.want {
			t.Errorf("after enrolling %s Quote() = %s, want %s", s.enroll, got, s.want)
		}
	}
}

func TestCheckout(t *testing.T) {
	ctx := context.Background()
	l := newLedger(storage.NewMemoryStore())
	_, _ = l.Enroll(ctx, "Cooking")
	_, _ = l.Enroll(ctx, "First Aid")

	h := l.Checkout()
	if diff := cmp.Diff([]string{"First Aid", "Cooking"}, h.CourseIDs); diff != "" {
		t.Errorf("Checkout() ids mismatch (-want +got):\n%s", diff)
	}
	if h.Quote.TotalString() != "2137.50" {
		t.Errorf("Checkout() total = %s, want 2137.50", h.Quote.TotalString())
	}
}

func TestRoundTrip_AcrossRestart(t *testing.T) {
	st, cleanup := storage.MustGetTempStore()
	defer cleanup()
	ctx := context.Background()

	l := newLedger(st)
	_, _ = l.Enroll(ctx, "Sewing")
	_, _ = l.Enroll(ctx, "Cooking")
	_, _ = l.Enroll(ctx, "Life Skills")
	_, _ = l.Remove(ctx, "Sewing")
	_, _ = l.Enroll(ctx, "Cooking")
	want := l.Selected()

	restarted := newLedger(st)
	if diff := cmp.Diff(want, restarted.Load(ctx)); diff != "" {
		t.Errorf("Load() after restart mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	st := &slowStore{Store: storage.NewMemoryStore()}
	l := newLedger(st)

	ids := newCatalog().ListCourses()
	var wg sync.WaitGroup
	for i, c := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, _ = l.Enroll(ctx, id)
			if i%2 == 1 {
				_, _ = l.Remove(ctx, id)
			}
		}(i, c.ID)
	}
	wg.Wait()

	if st.overlap != 0 {
		t.Error("store writes overlapped")
	}
	want := []string{"First Aid", "Landscaping", "Child Minding", "Garden Maintaining"}
	if diff := cmp.Diff(want, l.Selected()); diff != "" {
		t.Errorf("Selected() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, newLedger(st).Load(ctx)); diff != "" {
		t.Errorf("stored selection mismatch (-want +got):\n%s", diff)
	}
}
