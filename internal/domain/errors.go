package domain

import "errors"

// Terminal scan failure taxonomy. Validation and resolution failures are
// reported immediately; enrichment sub-steps degrade instead of failing.
var (
	// ErrInvalidAddress means the input is not a valid base58 32-byte
	// address. Never forwarded upstream.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrNotFound means no deployer could be resolved for a token.
	ErrNotFound = errors.New("deployer not found")

	// ErrUpstreamUnavailable means the primary chain-data provider failed
	// or timed out. Retryable by the caller.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
