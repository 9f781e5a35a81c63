package enrollment

import (
	"github.com/pkg/errors"
)

// ErrUnknownCourse is returned when enrolling in a course that is not in the
// catalog.
var ErrUnknownCourse = errors.New("unknown course")

// PersistenceError reports that a mutation could not be written to the store.
// The in-memory selection is left as it was before the mutation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "enrollment." + e.Op + ": persist selection: " + e.Err.Error()
}

func (e *PersistenceError) Cause() error { return e.Err }

func (e *PersistenceError) Unwrap() error { return e.Err }

func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
