// Package storage defines persistence interfaces for the game service.
//
// It covers game lifecycle state, seats and personas, rounds, actions with
// their arguments, votes, and narrations, join invites, and the append-only
// audit log. Implementations (e.g., SQLite) live in subpackages.
//
// Conditional updates are the concurrency backbone: phase transitions and
// action lifecycle moves are guarded on the previously read state, and
// uniqueness constraints turn concurrent duplicates into typed conflicts.
//
// Common error values:
//   - ErrNotFound: requested record is missing
//   - ErrDuplicateProposal, ErrDuplicateVote, ErrDuplicateNarration,
//     ErrPlayerExists: uniqueness violations surfaced as conflicts
//   - ErrStalePhase, ErrStaleAction: guarded update lost a race
package storage
