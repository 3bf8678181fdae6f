package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrCatalogUnreachable indicates the remote movie catalog is unreachable
	ErrCatalogUnreachable = errors.New("movie catalog is unreachable")

	// ErrAuthFailed indicates the API key was rejected
	ErrAuthFailed = errors.New("API key is invalid")

	// ErrMovieNotFound indicates the requested movie does not exist
	ErrMovieNotFound = errors.New("movie not found")

	// ErrStoreClosed indicates an operation on a closed local store
	ErrStoreClosed = errors.New("local store is closed")
)
