package domain

import "errors"

// ErrNotFound is returned by repositories when no record matches the id.
var ErrNotFound = errors.New("record not found")
