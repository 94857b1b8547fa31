package domain

import "errors"

// Error kinds shared by all layers. Adapters wrap them with context via fmt.Errorf.
var (
	// ErrConfig marks missing or invalid credentials; fatal at startup.
	ErrConfig = errors.New("configuration error")
	// ErrInput marks an invalid request or empty fetched content.
	ErrInput = errors.New("invalid input")
	// ErrFetch marks an unreachable or empty search/scrape backend.
	ErrFetch = errors.New("fetch failed")
	// ErrGeneration marks a reasoning backend timeout, rate limit or malformed response.
	ErrGeneration = errors.New("generation failed")
	// ErrConsistency marks argument data that violates the score ranges.
	ErrConsistency = errors.New("inconsistent arguments")
)
