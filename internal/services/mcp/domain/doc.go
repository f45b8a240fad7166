// Package domain translates MCP tool calls into game engine commands.
//
// The package is intentionally explicit about that mapping:
// - parse MCP tool input into engine requests,
// - execute them through the in-process engine as the configured agent user,
// - and surface structured outputs that MCP clients can render.
//
// This keeps MCP behavior auditable from protocol message -> engine command ->
// game state update.
package domain
