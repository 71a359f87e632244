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
//   - PostProcessorPipeline: Turns documents into chunks
//   - IndexBuilder: Builds and restores a retrieval index over chunks
//   - SnapshotStore: Persists built indexes
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Generation backend. Without it, answers come from the keyword fallback.
//   - EmbeddingService: Generates vector embeddings. Only needed by the dense strategy.
//   - PromptStore: Prompt overrides. Without it, built-in prompts are used.
//   - DocumentLoader: Reads an ingestion corpus from disk.
//   - Normaliser: Extracts plain text from one corpus file format.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
