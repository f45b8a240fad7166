// Package api contains the game service transport surfaces.
//
// API handlers are organized by transport. Today, the JSON HTTP API under
// httpapi is the canonical surface area for game operations; the MCP tool
// surface in internal/services/mcp drives the same engine in-process.
package api
