package models

import "errors"

// Errors that are not specific to a single model.
var (
	// ErrGeneral replaces driver errors that have no useful message for
	// callers. The full error is logged before the replacement.
	ErrGeneral = errors.New("an error occurred on the server during your request")

	// ErrResourceNotFound is completed with the resource name by the
	// query callback, e.g. "there is no budget matching your query".
	ErrResourceNotFound = errors.New("there is no")
)
