package publish

import "errors"

var (
	// ErrConflict means the projectId is already owned by another
	// user. Retrying the same id cannot succeed; callers must fork to
	// a fresh id.
	ErrConflict = errors.New("project is owned by another user")

	// ErrNotFound covers both a missing catalog record and a stored
	// artifact that no longer decodes; readers cannot tell the two
	// apart.
	ErrNotFound = errors.New("project not found")
)
