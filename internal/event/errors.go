package event

import "errors"

// ErrMalformed reports a payload that cannot be turned into an event.
var ErrMalformed = errors.New("malformed event payload")
