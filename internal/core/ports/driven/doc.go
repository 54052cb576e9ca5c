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
//   - Tokenizer: Maps text to token ids (external model collaborator)
//   - Encoder: Runs the bi-encoder over one framed chunk (external model collaborator)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingCache: Content-addressed vector cache. Without it, every call runs inference.
//   - NormaliserRegistry: Text extraction for files. Without it, file contents are embedded as-is.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
