// Package enrollment owns the user's selected courses: it keeps the selection
// in memory, persists it after every change and prices it on demand.
package enrollment

import (
	"context"
	"encoding/json"
	"sync"

	"empower/internal/pricing"
	"empower/internal/storage"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Catalog is the course reference table the ledger validates against.
type Catalog interface {
	pricing.PriceTable
	Exists(courseID string) bool
	Sort(courseIDs []string) []string
}

// Handoff is the payload passed to the payment step.
type Handoff struct {
	CourseIDs []string
	Quote     pricing.Quote
}

// Ledger serializes all mutations behind one mutex that is held until the
// store write has returned, so no mutation starts from state that a previous
// one has not yet persisted.
type Ledger struct {
	store    storage.Store
	catalog  Catalog
	selected map[string]bool
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewLedger(store storage.Store, catalog Catalog, logger *zap.Logger) *Ledger {
	return &Ledger{
		store:    store,
		catalog:  catalog,
		selected: make(map[string]bool),
		logger:   logger,
	}
}

// Load replaces the in-memory selection with the persisted one and returns
// it. A missing or corrupt record loads as an empty selection, and ids the
// catalog does not know are dropped. Load never writes.
func (l *Ledger) Load(ctx context.Context) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.selected = l.read(ctx)
	return l.sortedLocked()
}

func (l *Ledger) read(ctx context.Context) map[string]bool {
	selected := make(map[string]bool)

	raw, err := l.store.Get(ctx, storage.SelectedCoursesKey)
	if err == storage.ErrNotFound {
		return selected
	}
	if err != nil {
		l.logger.Warn("Reading selection failed, starting empty", zap.Error(err))
		return selected
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		l.logger.Warn("Stored selection is corrupt, starting empty", zap.Error(err))
		return selected
	}

	for _, id := range ids {
		if !l.catalog.Exists(id) {
			l.logger.Info("Dropping stale course from selection", zap.String("courseID", id))
			continue
		}
		selected[id] = true
	}
	return selected
}

func (l *Ledger) IsEnrolled(courseID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.selected[courseID]
}

// Selected returns the selection in catalog order.
func (l *Ledger) Selected() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.sortedLocked()
}

// Enroll adds courseID to the selection. Enrolling twice is a no-op on the
// set but is still persisted. It returns the new membership state.
func (l *Ledger) Enroll(ctx context.Context, courseID string) (bool, error) {
	if !l.catalog.Exists(courseID) {
		return false, errors.Wrap(ErrUnknownCourse, courseID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.copyLocked()
	next[courseID] = true
	if err := l.commitLocked(ctx, "Enroll", next); err != nil {
		return l.selected[courseID], err
	}

	l.logger.Info("Enrolled", zap.String("courseID", courseID), zap.Int("selected", len(next)))
	return true, nil
}

// Remove drops courseID from the selection, if present, and returns the new
// selection.
func (l *Ledger) Remove(ctx context.Context, courseID string) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.copyLocked()
	delete(next, courseID)
	if err := l.commitLocked(ctx, "Remove", next); err != nil {
		return l.sortedLocked(), err
	}

	l.logger.Info("Removed", zap.String("courseID", courseID), zap.Int("selected", len(next)))
	return l.sortedLocked(), nil
}

// Unenroll is Remove under the name the course screens use.
func (l *Ledger) Unenroll(ctx context.Context, courseID string) ([]string, error) {
	return l.Remove(ctx, courseID)
}

// Clear empties the selection.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.commitLocked(ctx, "Clear", make(map[string]bool)); err != nil {
		return err
	}
	l.logger.Info("Cleared selection")
	return nil
}

// Quote prices the current selection.
func (l *Ledger) Quote() pricing.Quote {
	l.mu.Lock()
	defer l.mu.Unlock()

	return pricing.Compute(l.sortedLocked(), l.catalog)
}

// Checkout snapshots the selection and its quote for the payment step.
func (l *Ledger) Checkout() Handoff {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := l.sortedLocked()
	return Handoff{
		CourseIDs: ids,
		Quote:     pricing.Compute(ids, l.catalog),
	}
}

// commitLocked writes next to the store and, only if that succeeds, makes it
// the in-memory selection.
func (l *Ledger) commitLocked(ctx context.Context, op string, next map[string]bool) error {
	ids := make([]string, 0, len(next))
	for id := range next {
		ids = append(ids, id)
	}
	data, err := json.Marshal(l.catalog.Sort(ids))
	if err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	if err := l.store.Set(ctx, storage.SelectedCoursesKey, string(data)); err != nil {
		l.logger.Error("Persisting selection failed", zap.String("op", op), zap.Error(err))
		return &PersistenceError{Op: op, Err: err}
	}
	l.selected = next
	return nil
}

func (l *Ledger) copyLocked() map[string]bool {
	next := make(map[string]bool, len(l.selected)+1)
	for id := range l.selected {
		next[id] = true
	}
	return next
}

func (l *Ledger) sortedLocked() []string {
	ids := make([]string, 0, len(l.selected))
	for id := range l.selected {
		ids = append(ids, id)
	}
	return l.catalog.Sort(ids)
}
