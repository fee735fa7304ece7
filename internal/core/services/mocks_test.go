package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// --- LLM ---

// mockLLM replays scripted replies and records every call.
type mockLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", nil
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

func (m *mockLLM) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	var last string
	if len(messages) > 0 {
		last = messages[len(messages)-1].Content
	}
	return m.Generate(ctx, last, driven.GenerateOptions{MaxTokens: opts.MaxTokens, Temperature: opts.Temperature})
}

func (m *mockLLM) ModelName() string { return "mock-model" }
func (m *mockLLM) Close() error      { return nil }

func (m *mockLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// --- Prompts ---

// mockPromptStore serves minimal templates exercising every documented field.
type mockPromptStore struct {
	prompts map[string]string
}

func newMockPromptStore() *mockPromptStore {
	return &mockPromptStore{prompts: map[string]string{
		driven.PromptRankPriority:   "TEAM: {{.TeamContext}}\nCOUNT: {{.Count}}\n{{.Headers}}",
		driven.PromptRankSystem:     "rank system",
		driven.PromptGenerateBrief:  "WINDOW: {{.Window}}\nTEAM: {{.TeamContext}}\nHISTORY: {{.History}}\nDETAILED {{.DetailedCount}}:\n{{.Detailed}}\nBRIEF {{.BriefCount}}:\n{{.Brief}}",
		driven.PromptGenerateSystem: "generate system",
	}}
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// --- Artifacts ---

type mockArtifactStore struct {
	mu       sync.Mutex
	contents map[string]string
	recent   []domain.Artifact
	saveErr  error
	saved    []*domain.Brief
}

func newMockArtifactStore() *mockArtifactStore {
	return &mockArtifactStore{contents: make(map[string]string)}
}

func (m *mockArtifactStore) Save(_ context.Context, brief *domain.Brief) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	path := "/briefs/" + brief.ArtifactID + "-weekly.md"
	m.contents[brief.ArtifactID] = brief.Content
	m.saved = append(m.saved, brief)
	return path, nil
}

func (m *mockArtifactStore) Load(_ context.Context, id string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contents[id]
	if !ok {
		return "", "", domain.ErrNotFound
	}
	return c, "/briefs/" + id + "-weekly.md", nil
}

func (m *mockArtifactStore) Recent(_ context.Context, n int) ([]domain.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.Artifact(nil), m.recent...)
	sort.Slice(out, func(a, b int) bool { return out[a].ModTime.After(out[b].ModTime) })
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// --- Context ---

type mockContextSource struct {
	text string
	err  error
}

func (m *mockContextSource) TeamContext(context.Context) (string, error) {
	return m.text, m.err
}

// --- Delivery ---

type post struct {
	threadID string
	text     string
}

// mockTarget records posts and can fail at a chosen call.
type mockTarget struct {
	mu     sync.Mutex
	posts  []post
	failAt int // 1-based call number to fail, 0 never
	err    error
}

func (m *mockTarget) PostRoot(_ context.Context, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.maybeFail(); err != nil {
		return "", err
	}
	m.posts = append(m.posts, post{text: text})
	return "1700000000.000100", nil
}

func (m *mockTarget) PostReply(_ context.Context, threadID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.maybeFail(); err != nil {
		return err
	}
	m.posts = append(m.posts, post{threadID: threadID, text: text})
	return nil
}

func (m *mockTarget) maybeFail() error {
	if m.failAt > 0 && len(m.posts)+1 == m.failAt {
		if m.err != nil {
			return m.err
		}
		return &domain.DestinationError{Code: "channel_not_found", Hint: "invite the bot"}
	}
	return nil
}

func (m *mockTarget) Destination() string { return "#ai-brief" }

func (m *mockTarget) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts)
}

type mockRecordStore struct {
	mu      sync.Mutex
	records map[string]domain.DeliveryRecord
	getErr  error
	saveErr error
	gets    int
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{records: make(map[string]domain.DeliveryRecord)}
}

func (m *mockRecordStore) Get(_ context.Context, path string) (*domain.DeliveryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	r, ok := m.records[path]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *mockRecordStore) Save(_ context.Context, path string, record domain.DeliveryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[path] = record
	return nil
}

// lineSplitter is a stand-in for the chunking pipeline: one chunk per
// blank-line separated block.
type lineSplitter struct{}

func (lineSplitter) Process(_ context.Context, text string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{Position: len(chunks), Content: block})
	}
	return chunks, nil
}

func (lineSplitter) SplitSources(text string) (string, string) {
	idx := strings.Index(text, "\n---\n")
	if idx < 0 {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+1:])
}

func (lineSplitter) LabelSources(sources, label string) string {
	sources = strings.TrimPrefix(strings.TrimSpace(sources), "---\n")
	if sources == "" {
		return ""
	}
	return label + " " + sources
}

type failingPipeline struct{}

func (failingPipeline) Process(context.Context, string) ([]domain.Chunk, error) {
	return nil, errors.New("pipeline broken")
}

var (
	_ driven.LLMService            = (*mockLLM)(nil)
	_ driven.PromptStore           = (*mockPromptStore)(nil)
	_ driven.ArtifactStore         = (*mockArtifactStore)(nil)
	_ driven.ContextSource         = (*mockContextSource)(nil)
	_ driven.DeliveryTarget        = (*mockTarget)(nil)
	_ driven.DeliveryRecordStore   = (*mockRecordStore)(nil)
	_ driven.PostProcessorPipeline = lineSplitter{}
	_ driven.SectionSplitter       = lineSplitter{}
)
