package mqtt

import "errors"

// ErrPublishExhausted is returned when every publish attempt failed.
var ErrPublishExhausted = errors.New("publish retries exhausted")
