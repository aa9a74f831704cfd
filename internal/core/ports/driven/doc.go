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
//   - EmbeddingService: Generates vector embeddings for ingest and query
//   - VectorIndex: Filtered nearest-neighbour storage and search
//   - CatalogStore: Course metadata and chunk persistence
//   - SessionStore: Bounded per-session conversation history
//   - ModelBackend: One configured model provider, selected at startup
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
