// Package domain defines the core entities of the ragchat client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and mirrors the backend's JSON contract:
//
//   - Document: An uploaded file and its processing status
//   - RagStore: A named retrieval corpus that documents are indexed into
//   - ChatSession / ChatMessage: A conversation grounded in a store
//   - AuthSession: The signed-in user and their token pair
//   - SystemConfig: Per-user presentation preferences
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
