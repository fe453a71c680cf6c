// Package driving provides interfaces for application entry points
// (primary/inbound ports) such as the CLI and the MCP server.
package driving
