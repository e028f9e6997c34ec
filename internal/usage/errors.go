package usage

import "errors"

// ErrUnavailable wraps failures loading the data a summary is built from.
var ErrUnavailable = errors.New("usage summary unavailable")
