package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptExt is the file extension of prompt templates on disk.
const PromptExt = ".tmpl"

// PromptStore loads LLM prompts from user-editable files on disk.
// Prompts are loaded from a configurable directory with fallback to embedded defaults.
//
// The store uses lazy initialisation - files are only created when first accessed,
// not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptRankSystem: `You rank newsletter emails for a design and development consultancy team. Reply with a single JSON object and nothing else.`,

	driven.PromptRankPriority: `You are filtering AI newsletters for a design/development consultancy team focused on systematic AI workflows.

TEAM FOCUS: {{.TeamContext}}

EMAIL HEADERS TO PRIORITIZE ({{.Count}} emails, index is the first field):
{{.Headers}}
Return JSON with two lists of indexes:
{
  "high_priority": [0, 5, 12],
  "medium_priority": [2, 8, 15]
}

An index may appear in at most one list. Leave out anything not worth reading.

Prioritize: tools and workflows, agent orchestration, systematic approaches, practical implementations.
Give HIGHEST priority to: major tool updates and workflow insights about tools the team already uses.
Skip: pure research, consumer features, general AI hype.

BIAS TOWARD RECENT CONTENT: give extra weight to the most recent emails for breaking developments.`,

	driven.PromptGenerateSystem: `You are the Weekly AI Brief Agent. You write for one specific team and every item you write connects to their work.`,

	driven.PromptGenerateBrief: `You are creating a deeply personalized AI industry analysis for this specific team.

TEAM CONTEXT - USE THIS TO CONNECT EVERYTHING:
{{.TeamContext}}

PREVIOUS BRIEF HISTORY (for continuity, avoid pure repetition):
{{.History}}

HIGH PRIORITY NEWSLETTERS FROM {{.Window}} ({{.DetailedCount}}):
{{.Detailed}}
OTHER NOTABLE ITEMS ({{.BriefCount}}):
{{.Brief}}
Transform these newsletters into actionable intelligence for THIS team. Every item must answer: "What does this mean for OUR work, OUR clients, OUR tools?"

# Weekly AI Brief — {{.Window}}

## What this means for your team

Create 6-10 deeply analyzed items that connect news to the team's context, projects, discussions and needs.

For EACH item, use this format:

**[Clear headline of the news/development]** (Source, Date)

**What it is:**
[What actually happened: the facts, what changed, what was announced. Objective and descriptive.]

**What it means for you:**
[How it relates to the team's work, projects and discussions. Specific, concrete implications.]

## Worth keeping an eye on

2-4 emerging patterns or early-stage developments that are not immediately actionable but could matter soon.

For EACH item:
**[Trend or development]** (Source, Date)
[1-2 paragraphs explaining what it is and why it matters]
→ Worth watching: [Specific reason this team should track it]

## Things to try this week

3-5 concrete experiments the team could run based on this week's news.

For EACH:
**[Action item]** → Solves: [Specific team problem] → Time: [Estimate]
• [2-3 bullet points with concrete steps]

---
**Sources:** [List all sources: newsletters, team meetings, specific emails]

RULES:
- EVERY item must explicitly connect to team context; no generic summaries
- Include dates for all items
- Be specific and actionable, not abstract
- Give realistic time estimates (15-60 min usually)`,
}

// DefaultPrompt returns the embedded template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.pulse-brief/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// Falls back to the embedded default if the file cannot be read.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	// No lock held during I/O.
	prompt, err := s.loadFromFile(name)
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+PromptExt)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+PromptExt))
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("prompt %q is empty", name)
	}
	return text, nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# Pulse Brief Prompts

Templates used by the weekly brief. Edit any file to change what the model is asked.

## Files

- ` + "`rank_system.tmpl`" + ` - System prompt for the ranking pass
- ` + "`rank_priority.tmpl`" + ` - Asks for high and medium priority indexes as JSON
- ` + "`generate_system.tmpl`" + ` - System prompt for brief generation
- ` + "`generate_brief.tmpl`" + ` - Writes the brief from the selected newsletters

## Template fields

Templates use Go text/template syntax.

rank_priority: ` + "`{{.TeamContext}}`, `{{.Headers}}`, `{{.Count}}`" + `

generate_brief: ` + "`{{.Window}}`, `{{.TeamContext}}`, `{{.History}}`, `{{.Detailed}}`, `{{.Brief}}`, `{{.DetailedCount}}`, `{{.BriefCount}}`" + `

Unknown fields fail the run. Delete a file to restore its default.
While ` + "`brief schedule start`" + ` runs, edits are picked up without a restart.
`
	return os.WriteFile(path, []byte(content), 0600)
}
