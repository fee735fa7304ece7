// Package file provides filesystem-backed stores for generated briefs.
//
// Adapters:
//   - ArtifactStore: one markdown file per brief, named by window end date
//   - RecordStore: delivery records written beside each artifact
//   - ContextStore: team overview and recent meeting notes
package file
