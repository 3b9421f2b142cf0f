// Package mcp provides an MCP (Model Context Protocol) server adapter for ragchat.
// It lets AI assistants list stores, ask questions against them, and follow
// document processing.
package mcp

import "errors"

// ErrMissingStoreService is returned when the store service is not provided.
var ErrMissingStoreService = errors.New("mcp: store service is required")

// ErrToolUnavailable is returned by a tool whose backing service is not wired.
var ErrToolUnavailable = errors.New("mcp: tool is not available")
