package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

const (
	generateMaxTokens   = 8000
	generateTemperature = 0.3

	historyBytes  = 4000
	detailedBytes = 12000
	briefBytes    = 6000

	// historyLines is how much of each previous brief is scanned for key points.
	historyLines = 50
	// keyPointsPerBrief bounds the key points taken from one previous brief.
	keyPointsPerBrief = 8
	keyPointMinLen    = 10
	keyPointMaxLen    = 100

	noHistory = "No previous briefs found."
)

// Generator writes the brief from the selected documents.
type Generator struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	artifacts driven.ArtifactStore
	model     string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGenerateModel overrides the model used for generation.
func WithGenerateModel(model string) GeneratorOption {
	return func(g *Generator) {
		g.model = model
	}
}

// NewGenerator creates a generator. artifacts supplies previous briefs and may be nil.
func NewGenerator(
	llm driven.LLMService,
	prompts driven.PromptStore,
	artifacts driven.ArtifactStore,
	opts ...GeneratorOption,
) *Generator {
	g := &Generator{llm: llm, prompts: prompts, artifacts: artifacts}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the brief text for the window. The reply is opaque.
func (g *Generator) Generate(
	ctx context.Context,
	window domain.Window,
	sel *domain.Selection,
	teamContext string,
	rc domain.RunContext,
) (string, error) {
	if g.llm == nil {
		return "", domain.NewStageError("generate", domain.KindOracleCall, domain.ErrLLMUnavailable)
	}

	detailed, err := yaml.Marshal(sel.Detailed)
	if err != nil {
		return "", domain.NewStageError("generate", domain.KindOracleCall, fmt.Errorf("encode documents: %w", err))
	}
	brief := []byte("[]\n")
	if len(sel.Brief) > 0 {
		if brief, err = yaml.Marshal(sel.Brief); err != nil {
			return "", domain.NewStageError("generate", domain.KindOracleCall, fmt.Errorf("encode summaries: %w", err))
		}
	}

	prompt, err := renderPrompt(g.prompts, driven.PromptGenerateBrief, map[string]any{
		"Window":        window.Label,
		"TeamContext":   teamContext,
		"History":       TruncateBytes(g.History(ctx, rc.HistoryCount), historyBytes),
		"Detailed":      TruncateBytes(string(detailed), detailedBytes),
		"Brief":         TruncateBytes(string(brief), briefBytes),
		"DetailedCount": len(sel.Detailed),
		"BriefCount":    len(sel.Brief),
	})
	if err != nil {
		return "", domain.NewStageError("generate", domain.KindOracleCall, err)
	}

	logger.Info("generating brief from %d detailed + %d brief documents", len(sel.Detailed), len(sel.Brief))
	text, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   generateMaxTokens,
		Temperature: generateTemperature,
		System:      systemPrompt(g.prompts, driven.PromptGenerateSystem),
		Model:       g.model,
	})
	if err != nil {
		return "", domain.NewStageError("generate", domain.KindOracleCall, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.NewStageError("generate", domain.KindOracleCall, errors.New("empty reply"))
	}
	return text, nil
}

// History summarises the n most recent briefs as key points for continuity.
func (g *Generator) History(ctx context.Context, n int) string {
	if g.artifacts == nil || n <= 0 {
		return noHistory
	}
	recent, err := g.artifacts.Recent(ctx, n)
	if err != nil {
		logger.Warn("list previous briefs: %v", err)
		return noHistory
	}

	var summaries []string
	for _, a := range recent {
		content, _, err := g.artifacts.Load(ctx, a.ID)
		if err != nil {
			logger.Warn("could not read %s: %v", a.Path, err)
			continue
		}
		summary := "FILE: " + filepath.Base(a.Path) + "\n" + strings.Join(KeyPoints(content), "\n")
		summaries = append(summaries, summary)
	}
	if len(summaries) == 0 {
		return noHistory
	}
	return strings.Join(summaries, "\n\n---\n\n")
}

// KeyPoints extracts "section: topic" lines from the head of a brief.
// Topics are the text of "• " bullets up to any "→", under a "## " section.
func KeyPoints(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > historyLines {
		lines = lines[:historyLines]
	}

	var section string
	var points []string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "## "):
			section = strings.TrimSpace(line)
		case strings.HasPrefix(line, "• ") && section != "":
			topic := strings.TrimPrefix(line, "• ")
			topic, _, _ = strings.Cut(topic, "→")
			topic = strings.TrimSpace(topic)
			if len(topic) <= keyPointMinLen {
				continue
			}
			points = append(points, section+": "+TruncateBytes(topic, keyPointMaxLen))
		}
		if len(points) == keyPointsPerBrief {
			break
		}
	}
	return points
}
