// Package audit contains durable in-product audit writes for game service operations.
//
// This package owns the persisted journal that reconstructs how a game reached
// its current state: phase transitions, proposals, votes, resolutions,
// narrations, and timeout sweeps.
//
// For distributed tracing, this service still uses package `internal/platform/otel`.
package audit
