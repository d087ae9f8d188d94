package database

import (
	"errors"
	"strings"
)

// Error taxonomy surfaced by the repositories. Callers match with
// errors.Is; every sentinel is wrapped with operation context before
// being returned.
var (
	// ErrNotFound: the referenced identity does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict: uniqueness violation, or a write against a row that
	// has been deleted out from under the caller.
	ErrConflict = errors.New("record conflict")

	// ErrValidation: a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrIndexDesync: the search index no longer matches the builds
	// table. Unreachable while all mutations go through the trigger
	// path; if it ever surfaces, it must not be swallowed.
	ErrIndexDesync = errors.New("search index out of sync with builds table")
)

// isUniqueConstraintErr reports whether err is a unique constraint
// violation. Other constraint classes (CHECK, NOT NULL) must not match:
// those indicate malformed input, not a conflicting row.
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
