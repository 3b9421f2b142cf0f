// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - AuthAPI, DocumentAPI, StoreAPI, ChatAPI: The backend REST/SSE contract
//   - TokenStore: Persistence of the signed-in session
//   - TokenProvider: Bearer tokens with transparent refresh
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SettingsAPI, AnalyticsAPI, UserAPI: Administrative surfaces
//   - ChatSessionStore: Reuse of chat sessions across runs. Without it every chat starts fresh.
//   - SchedulerStore: Task state persistence. Without it task state is kept in memory.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
