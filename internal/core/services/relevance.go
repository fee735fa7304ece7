package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

const (
	rankMaxTokens = 800

	// rankContextBytes bounds the team context sent with the header list.
	rankContextBytes = 2000
)

// rankingReply is the only shape accepted from the ranking oracle.
// Pointers distinguish a missing list from an empty one.
type rankingReply struct {
	High   *[]int `json:"high_priority"`
	Medium *[]int `json:"medium_priority"`
}

// Prioritiser runs the two-stage relevance pipeline: a cheap ranking pass over
// document headers, then tiered projection of the selected documents.
type Prioritiser struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	model   string
}

// PrioritiserOption configures a Prioritiser.
type PrioritiserOption func(*Prioritiser)

// WithRankModel overrides the model used for the ranking pass.
func WithRankModel(model string) PrioritiserOption {
	return func(p *Prioritiser) {
		p.model = model
	}
}

// NewPrioritiser creates a prioritiser. llm may be nil when every run stays
// under the two-stage threshold.
func NewPrioritiser(llm driven.LLMService, prompts driven.PromptStore, opts ...PrioritiserOption) *Prioritiser {
	p := &Prioritiser{llm: llm, prompts: prompts}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Select assigns tiers to docs and builds the detailed and brief projections.
// docs must be the newest-first list the indices refer to.
// An unusable ranking reply falls back to positional tiers; a failed call is fatal.
func (p *Prioritiser) Select(
	ctx context.Context,
	docs []domain.Document,
	teamContext string,
	rc domain.RunContext,
) (*domain.Selection, error) {
	n := len(docs)
	sel := &domain.Selection{}

	if n > rc.TwoStageThreshold {
		sel.TwoStage = true
		logger.Info("ranking %d documents (two-stage)", n)
		assignment, err := p.rank(ctx, docs, teamContext, rc)
		if err != nil {
			return nil, err
		}
		sel.Assignment = assignment

		tally := assignment.Tally(n)
		logger.Info("ranking: %d %s, %d %s, %d %s", tally[domain.TierHigh], domain.TierHigh,
			tally[domain.TierMedium], domain.TierMedium, tally[domain.TierUnassigned], domain.TierUnassigned)
		for i := range docs {
			logger.Debug("  [%d] %-10s %s", i, assignment.TierOf(i), docs[i].Title)
		}
	} else {
		sel.Assignment = domain.PriorityAssignment{High: indexRange(0, n)}
	}

	high := sel.Assignment.High
	if sel.TwoStage {
		high = capIndices(high, rc.DetailCap)
	}
	for _, i := range high {
		d := docs[i]
		sel.Detailed = append(sel.Detailed, domain.DetailedDoc{
			Title:  d.Title,
			Source: d.Source,
			Date:   d.Date,
			Text:   TruncateBytes(d.Text, rc.DetailBodyBytes),
			URL:    d.BestLink(),
		})
	}

	for _, i := range capIndices(sel.Assignment.Medium, rc.BriefCap) {
		d := docs[i]
		sel.Brief = append(sel.Brief, domain.BriefDoc{
			Title:     d.Title,
			Source:    d.Source,
			Date:      d.Date,
			BriefText: TruncateBytes(d.Text, rc.BriefBodyBytes),
		})
	}

	sel.Dropped = n - len(sel.Detailed) - len(sel.Brief)
	logger.Info("selected %d detailed, %d brief, %d dropped", len(sel.Detailed), len(sel.Brief), sel.Dropped)
	return sel, nil
}

// rank runs stage one. Only the oracle call itself can fail the run.
func (p *Prioritiser) rank(
	ctx context.Context,
	docs []domain.Document,
	teamContext string,
	rc domain.RunContext,
) (domain.PriorityAssignment, error) {
	if p.llm == nil {
		return domain.PriorityAssignment{}, domain.NewStageError("rank", domain.KindOracleCall, domain.ErrLLMUnavailable)
	}

	headers := make([]domain.HeaderProjection, len(docs))
	for i := range docs {
		headers[i] = domain.HeaderProjection{
			Index:  i,
			Title:  docs[i].Title,
			Source: docs[i].Source,
			Date:   docs[i].DateOnly(),
		}
	}
	headerYAML, err := yaml.Marshal(headers)
	if err != nil {
		return domain.PriorityAssignment{}, domain.NewStageError("rank", domain.KindOracleCall,
			fmt.Errorf("encode headers: %w", err))
	}

	prompt, err := renderPrompt(p.prompts, driven.PromptRankPriority, map[string]any{
		"TeamContext": TruncateBytes(teamContext, rankContextBytes),
		"Headers":     string(headerYAML),
		"Count":       len(docs),
	})
	if err != nil {
		return domain.PriorityAssignment{}, domain.NewStageError("rank", domain.KindOracleCall, err)
	}

	reply, err := p.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   rankMaxTokens,
		Temperature: 0,
		System:      systemPrompt(p.prompts, driven.PromptRankSystem),
		Model:       p.model,
	})
	if err != nil {
		return domain.PriorityAssignment{}, domain.NewStageError("rank", domain.KindOracleCall, err)
	}

	assignment, err := ParseRanking(reply, len(docs))
	if err != nil {
		logger.Warn("%v; using chronological order", domain.NewStageError("rank", domain.KindOracleParse, err))
		return FallbackAssignment(len(docs), rc), nil
	}
	return assignment, nil
}

// ParseRanking decodes a ranking reply for n documents. The whole reply is
// tried first, then its outermost brace span. Both lists must be present,
// in range and disjoint; anything less is rejected as a whole.
func ParseRanking(text string, n int) (domain.PriorityAssignment, error) {
	candidates := []string{stripFences(text)}
	if span, ok := braceSpan(text); ok && span != candidates[0] {
		candidates = append(candidates, span)
	}

	var decodeErr error
	for _, c := range candidates {
		reply, err := decodeRanking(c)
		if err != nil {
			decodeErr = err
			continue
		}
		if err := reply.validate(n); err != nil {
			return domain.PriorityAssignment{}, fmt.Errorf("%w: %v", domain.ErrUnparsableRanking, err)
		}
		return domain.PriorityAssignment{High: *reply.High, Medium: *reply.Medium}, nil
	}
	return domain.PriorityAssignment{}, fmt.Errorf("%w: %v", domain.ErrUnparsableRanking, decodeErr)
}

// FallbackAssignment tiers documents by position: the first FallbackHigh are
// high, the next FallbackMedium are medium.
func FallbackAssignment(n int, rc domain.RunContext) domain.PriorityAssignment {
	highEnd := min(rc.FallbackHigh, n)
	mediumEnd := min(rc.FallbackHigh+rc.FallbackMedium, n)
	return domain.PriorityAssignment{
		High:     indexRange(0, highEnd),
		Medium:   indexRange(highEnd, mediumEnd),
		Fallback: true,
	}
}

func decodeRanking(s string) (rankingReply, error) {
	var reply rankingReply
	dec := json.NewDecoder(strings.NewReader(s))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&reply); err != nil {
		return reply, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return reply, errors.New("trailing data after ranking object")
	}
	if reply.High == nil || reply.Medium == nil {
		return reply, errors.New("missing priority list")
	}
	return reply, nil
}

func (r rankingReply) validate(n int) error {
	seen := make(map[int]struct{}, len(*r.High)+len(*r.Medium))
	for _, list := range [][]int{*r.High, *r.Medium} {
		for _, i := range list {
			if i < 0 || i >= n {
				return fmt.Errorf("index %d out of range [0,%d)", i, n)
			}
			if _, dup := seen[i]; dup {
				return fmt.Errorf("index %d assigned twice", i)
			}
			seen[i] = struct{}{}
		}
	}
	return nil
}

// stripFences removes a surrounding markdown code fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// braceSpan returns the text between the first '{' and the last '}'.
func braceSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func indexRange(from, to int) []int {
	if to <= from {
		return nil
	}
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

func capIndices(idx []int, limit int) []int {
	if len(idx) > limit {
		return idx[:limit]
	}
	return idx
}
