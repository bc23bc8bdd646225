package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned for any login failure. Callers get
	// the same error whether the email is unknown or the password is wrong,
	// so the login endpoint cannot be used to enumerate admin accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthorized is returned when a valid token belongs to a different
	// organization than the one being modified.
	ErrUnauthorized = errors.New("token does not grant access to this organization")

	// ErrStoreUnavailable wraps datastore failures that are not part of the
	// domain error set, such as connection loss or query timeouts.
	ErrStoreUnavailable = errors.New("datastore unavailable")
)

// ValidationError reports a request field that failed a semantic check the
// transport-level binding cannot express.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
