// Package domain defines the core business entities for the weekly brief pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawMessage: A mail message as delivered by the message store
//   - Document: A canonicalised, deduplicated newsletter
//   - Window: The trailing time interval scoping a run
//   - PriorityAssignment: Tiers produced by the relevance pipeline
//   - Chunk: A size-bounded slice of formatted delivery text
//   - DeliveryRecord: Durable proof that an artifact was fully delivered
//   - RunContext: Paths, thresholds and budgets shared by every stage
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
