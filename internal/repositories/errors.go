package repositories

import "errors"

// ErrDuplicateEmail is returned by Create when the unique index on
// lower(email) rejects the insert. The index, not the application-level
// pre-check, is what closes the check/insert race.
var ErrDuplicateEmail = errors.New("email already exists")
