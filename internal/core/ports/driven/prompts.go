package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the embedded
	// default or an error when no default exists.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// The scheduler daemon calls this when prompt files change on disk.
	Reload()
}

// Well-known prompt names. Templates use text/template syntax.
const (
	// PromptRankPriority scores newsletter headers by relevance.
	// Fields: .TeamContext, .Headers (YAML), .Count.
	PromptRankPriority = "rank_priority"

	// PromptRankSystem is the system prompt for the ranking call.
	PromptRankSystem = "rank_system"

	// PromptGenerateBrief writes the weekly brief.
	// Fields: .Window, .TeamContext, .History, .Detailed (YAML), .Brief (YAML),
	// .DetailedCount, .BriefCount.
	PromptGenerateBrief = "generate_brief"

	// PromptGenerateSystem is the system prompt for generation.
	PromptGenerateSystem = "generate_system"
)
