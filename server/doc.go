// Package server is the HTTP adapter over the query service: JSON in,
// JSON out, error kinds mapped to status codes. It adds no retrieval
// behavior of its own.
package server
