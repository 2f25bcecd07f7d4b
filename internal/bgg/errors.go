package bgg

import "errors"

// ErrNotFound indicates the remote item does not exist. It is always wrapped
// in a PermanentError.
var ErrNotFound = errors.New("item not found")

// TransientError marks a failure worth retrying later: rate limits,
// upstream 5xx, transport errors, or the retry budget running out on one of
// those. A sync run that hits one fails as a whole and is retried on the
// next scheduled tick.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure retrying cannot fix: not found, malformed
// payloads, or any non-429 4xx. The affected item is skipped and logged; the
// run continues.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// AuthError marks missing or rejected credentials. Fatal for the current
// run, never for the process.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "auth: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsPermanent reports whether err is (or wraps) a PermanentError.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}
