package domain

import "errors"

// ErrUserUnavailable marks a deleted or suspended account. Permanent: the
// caller skips the candidate rather than retrying.
var ErrUserUnavailable = errors.New("user unavailable")

// ErrNotFound marks a missing remote resource (404). Permanent.
var ErrNotFound = errors.New("not found")

// TransientError wraps a remote failure that is worth retrying (network
// trouble, rate limiting, 5xx responses).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as retryable. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err (or anything it wraps) is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
