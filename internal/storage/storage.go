// Package storage is the local key/value store the app persists its state in.
// Values are opaque strings; callers serialize them (JSON) themselves.
package storage

import (
	"context"

	"github.com/pkg/errors"
)

// Keys used by the app.
const (
	SelectedCoursesKey = "selectedCourses"
	UserKey            = "user"
)

// ErrNotFound is returned by Store.Get when there is no value for the key.
var ErrNotFound = errors.New("no such key")

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
