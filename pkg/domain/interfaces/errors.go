package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrSectionNotFound is returned by Repository implementations when a
// section has no configuration or no tracker binding. Declared here so
// every layer matches the same sentinel with errors.Is.
var ErrSectionNotFound = goerr.New("section not found")
