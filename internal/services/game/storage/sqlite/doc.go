// Package sqlite implements the game persistence contracts on SQLite.
//
// Why this package exists:
// - It is the concrete backend the orchestrator's guarded updates run against.
// - It owns migration and schema-compatibility behavior for game history durability.
// - It translates uniqueness violations into the typed conflicts the domain expects.
//
// The backend uses hand-written SQL and embedded migrations; only this package
// translates domain entities into concrete SQL rows and transactions.
package sqlite
