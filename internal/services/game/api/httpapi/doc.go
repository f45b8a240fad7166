// Package httpapi exposes the game engine over a JSON HTTP surface. Routes
// follow "METHOD /path" mux patterns, callers authenticate with bearer
// identity tokens, and failures render as google.rpc.Status bodies with
// localized messages.
package httpapi
