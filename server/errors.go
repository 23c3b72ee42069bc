package server

import "errors"

var (
	// ErrServiceRequired is returned when a query service is not provided.
	ErrServiceRequired = errors.New("query service required")
)
