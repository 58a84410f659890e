package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by repositories when a record does not exist.
// Both backends wrap this sentinel so callers can test with errors.Is.
var ErrNotFound = goerr.New("record not found")
