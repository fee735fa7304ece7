package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pulse-brief/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

const previousBrief = `# Weekly AI Brief — Oct 24–31

## Things to try this week

• Pair slash commands with free-form prompts → Solves: rigid flows → Time: 30 min
• short one
• Wire the review agent into CI → Solves: slow reviews

## Worth keeping an eye on

• Agent protocols converging on tool schemas
`

func TestKeyPoints(t *testing.T) {
	points := KeyPoints(previousBrief)

	assert.Equal(t, []string{
		"## Things to try this week: Pair slash commands with free-form prompts",
		"## Things to try this week: Wire the review agent into CI",
		"## Worth keeping an eye on: Agent protocols converging on tool schemas",
	}, points)
}

func TestKeyPoints_Limits(t *testing.T) {
	var b strings.Builder
	b.WriteString("• orphan bullet before any section\n## Section\n")
	for i := 0; i < 12; i++ {
		b.WriteString("• " + strings.Repeat("long topic ", 15) + "\n")
	}

	points := KeyPoints(b.String())
	require.Len(t, points, 8)
	for _, p := range points {
		assert.LessOrEqual(t, len(strings.TrimPrefix(p, "## Section: ")), 100)
	}
}

func TestKeyPoints_OnlyHeadIsScanned(t *testing.T) {
	content := strings.Repeat("filler\n", 60) + "## Late\n• this bullet is far too late to count\n"
	assert.Empty(t, KeyPoints(content))
}

func TestGenerator_History(t *testing.T) {
	store := newMockArtifactStore()
	now := time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"2025-10-17", "2025-10-24", "2025-10-31", "2025-10-10"} {
		store.contents[id] = previousBrief
		store.recent = append(store.recent, domain.Artifact{
			ID:      id,
			Path:    "/briefs/" + id + "-weekly.md",
			ModTime: now.Add(time.Duration(i) * time.Hour),
		})
	}
	store.recent[3].ModTime = now.Add(-time.Hour)

	g := NewGenerator(&mockLLM{}, newMockPromptStore(), store)
	history := g.History(context.Background(), 3)

	assert.True(t, strings.HasPrefix(history, "FILE: 2025-10-31-weekly.md\n"))
	assert.Equal(t, 2, strings.Count(history, "\n\n---\n\n"))
	assert.NotContains(t, history, "2025-10-10")
}

func TestGenerator_History_Empty(t *testing.T) {
	g := NewGenerator(&mockLLM{}, newMockPromptStore(), memory.NewArtifactStore())
	assert.Equal(t, "No previous briefs found.", g.History(context.Background(), 3))

	g = NewGenerator(&mockLLM{}, newMockPromptStore(), nil)
	assert.Equal(t, "No previous briefs found.", g.History(context.Background(), 3))
}

func TestGenerator_Generate(t *testing.T) {
	llm := &mockLLM{replies: []string{"# Weekly AI Brief\n\nContent"}}
	g := NewGenerator(llm, newMockPromptStore(), nil, WithGenerateModel("gen-model"))
	sel := &domain.Selection{
		Detailed: []domain.DetailedDoc{{Title: "Agents ship", Source: "Every", Date: "2025-11-06T10:00:00Z", Text: "details", URL: "https://example.com/agents"}},
		Brief:    []domain.BriefDoc{{Title: "Minor update", Source: "TLDR", Date: "2025-11-05T10:00:00Z", BriefText: "short"}},
	}
	window := domain.Window{Label: "Oct 31–Nov 07"}

	text, err := g.Generate(context.Background(), window, sel, "We build agents.", domain.DefaultRunContext())
	require.NoError(t, err)
	assert.Equal(t, "# Weekly AI Brief\n\nContent", text)

	require.Equal(t, 1, llm.calls())
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "WINDOW: Oct 31–Nov 07")
	assert.Contains(t, prompt, "TEAM: We build agents.")
	assert.Contains(t, prompt, "HISTORY: No previous briefs found.")
	assert.Contains(t, prompt, "DETAILED 1:")
	assert.Contains(t, prompt, "url: https://example.com/agents")
	assert.Contains(t, prompt, "brief_text: short")

	opts := llm.opts[0]
	assert.Equal(t, 8000, opts.MaxTokens)
	assert.InDelta(t, 0.3, opts.Temperature, 1e-9)
	assert.Equal(t, "generate system", opts.System)
	assert.Equal(t, "gen-model", opts.Model)
}

func TestGenerator_Generate_Errors(t *testing.T) {
	sel := &domain.Selection{}
	rc := domain.DefaultRunContext()

	g := NewGenerator(&mockLLM{err: errors.New("timeout")}, newMockPromptStore(), nil)
	_, err := g.Generate(context.Background(), domain.Window{}, sel, "", rc)
	assert.Equal(t, domain.KindOracleCall, domain.KindOf(err))

	g = NewGenerator(&mockLLM{replies: []string{"   "}}, newMockPromptStore(), nil)
	_, err = g.Generate(context.Background(), domain.Window{}, sel, "", rc)
	assert.ErrorContains(t, err, "empty reply")

	prompts := newMockPromptStore()
	delete(prompts.prompts, "generate_brief")
	g = NewGenerator(&mockLLM{}, prompts, nil)
	_, err = g.Generate(context.Background(), domain.Window{}, sel, "", rc)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	g = NewGenerator(nil, newMockPromptStore(), nil)
	_, err = g.Generate(context.Background(), domain.Window{}, sel, "", rc)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
