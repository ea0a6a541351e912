package domain

import "errors"

var (
	// ErrInvalidInput is returned when a comparison request is malformed
	ErrInvalidInput = errors.New("invalid comparison input")

	// ErrStoreAPIFailure is returned when a retailer API request fails
	ErrStoreAPIFailure = errors.New("store API request failed")

	// ErrUnknownStore is returned when a scrape targets an unconfigured store
	ErrUnknownStore = errors.New("unknown store")

	// ErrAIUnavailable is returned when the semantic matcher is not configured
	ErrAIUnavailable = errors.New("semantic matching service unavailable")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
