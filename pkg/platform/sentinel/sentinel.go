package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: unique constraint violated (duplicate wallet, docHash, email)
// - ErrStaleNonce: compare-and-swap on a challenge nonce lost the race
// - ErrExpired: token or access link has expired
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrStaleNonce  = errors.New("stale nonce")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
