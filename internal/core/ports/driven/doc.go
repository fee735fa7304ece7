// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a full pipeline run:
//
//   - MessageStore: Paginated listing and per-id fetch of raw messages (Gmail)
//   - Canonicaliser: Rich-text to markdown conversion
//   - LLMService: Ranking and generation oracle
//   - ArtifactStore: Generated brief persistence
//   - DeliveryTarget: Threaded posting (Slack)
//   - DeliveryRecordStore: Durable proof of completed delivery
//   - ConfigStore: Application configuration
//   - PromptStore: Ranking and generation prompt templates
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - ContextSource: Team overview and meeting notes for the prompts
//   - SchedulerStore: Only needed when the scheduler daemon runs
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
