package messaging

import (
	"errors"
	"fmt"
)

// ErrClosed is returned when publishing through a closed publisher.
var ErrClosed = errors.New("messaging: publisher closed")

// PermanentError marks a failure that will not succeed on redelivery.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent: %v", e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the retry middleware skips further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err or any error it wraps is permanent.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
