package gateway

import (
	"errors"
	"fmt"
)

// ErrNoAttempts is the entitlement failure: the player has no remaining
// match attempts. Surfaced as a blocking notice; the session never starts.
var ErrNoAttempts = errors.New("no attempts remaining")

// TransientError wraps failures worth retrying: network trouble, 429, 5xx.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient failure: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError wraps failures no retry can fix: rejected requests, malformed
// or schema-invalid responses.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsTransient reports whether err may succeed on retry.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
