// Package service wires the MCP protocol transport to the game tool handlers.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio and delegates business meaning to domain handlers in the MCP package.
package service
