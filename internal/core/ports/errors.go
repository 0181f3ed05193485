package ports

import "errors"

// ErrNotFound reports that the referenced remote resource does not
// exist. Callers treat it as "nothing to do here" rather than a
// failure; every other error from a port is transient or fatal.
var ErrNotFound = errors.New("resource not found")
