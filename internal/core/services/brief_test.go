package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pulse-brief/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

const generatedBrief = `# Weekly AI Brief — Oct 31–Nov 07

## What this means for your team

**Agents ship** (Every, Nov 06)

Details.
---
**Sources:** Every`

type briefFixture struct {
	store     *mockMessageStore
	llm       *mockLLM
	artifacts *mockArtifactStore
	target    *mockTarget
	records   *mockRecordStore
	svc       *BriefService
}

func newBriefFixture(t *testing.T, inWindow int, contextQuery string) *briefFixture {
	t.Helper()

	var msgs []*domain.RawMessage
	for i := 0; i < inWindow; i++ {
		ts := fixedNow.Add(-time.Duration(i+1) * time.Hour).UnixMilli()
		msgs = append(msgs, newsletter(fmt.Sprintf("in-%d", i), ts, fmt.Sprintf("Fresh %d", i),
			fmt.Sprintf("<p>https://example.com/fresh-%d</p>", i)))
	}
	for i := 0; i < 3; i++ {
		ts := fixedNow.AddDate(0, 0, -10-i).UnixMilli()
		msgs = append(msgs, newsletter(fmt.Sprintf("old-%d", i), ts, fmt.Sprintf("Old %d", i),
			fmt.Sprintf("<p>https://example.com/old-%d</p>", i)))
	}

	f := &briefFixture{
		store:     newMockMessageStore(10, msgs...),
		llm:       &mockLLM{},
		artifacts: newMockArtifactStore(),
		target:    &mockTarget{},
		records:   newMockRecordStore(),
	}

	rc := domain.DefaultRunContext()
	rc.Location = time.UTC
	rc.Now = func() time.Time { return fixedNow }

	prompts := newMockPromptStore()
	ingestor := NewIngestor(f.store, &stubCanonicaliser{}, WithLinkResolver(rfc822Link))
	deliverer := newTestDeliverer(f.target, f.records)

	f.svc = NewBriefService(
		BriefConfig{Query: "label:news", ContextQuery: contextQuery, Run: rc},
		ingestor,
		NewPrioritiser(f.llm, prompts),
		NewGenerator(f.llm, prompts, f.artifacts),
		f.artifacts,
		deliverer,
		&mockContextSource{text: "TEAM CONTEXT:\nWe build agent tooling."},
	)
	return f
}

func rankReply(high, medium [2]int) string {
	return fmt.Sprintf(`{"high_priority": %s, "medium_priority": %s}`,
		jsonIndices(high[0], high[1]), jsonIndices(medium[0], medium[1]))
}

// ==================== BriefService Tests ====================

func TestBriefService_Run_EndToEnd(t *testing.T) {
	f := newBriefFixture(t, 25, "")
	f.llm.replies = []string{rankReply([2]int{0, 20}, [2]int{20, 25}), generatedBrief}

	report, err := f.svc.Run(context.Background(), domain.RunOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "Oct 31–Nov 07", report.Window.Label)
	assert.Equal(t, 28, report.Stats.Unique)
	assert.Equal(t, 25, report.Stats.InWindow)
	assert.True(t, report.Stats.TwoStage)
	assert.False(t, report.Stats.Fallback)
	assert.Equal(t, 20, report.Stats.Detailed)
	assert.Equal(t, 5, report.Stats.Brief)
	assert.Equal(t, 0, report.Stats.Dropped)
	assert.Equal(t, []string{"newer_than:30d label:news"}, f.store.queries[:1])

	require.NotNil(t, report.Brief)
	assert.Equal(t, "2025-11-07", report.Brief.ArtifactID)
	assert.Equal(t, "/briefs/2025-11-07-weekly.md", report.Brief.Path)
	assert.Equal(t, generatedBrief, f.artifacts.contents["2025-11-07"])

	require.NotNil(t, report.Delivery)
	assert.Equal(t, domain.StateComplete, report.Delivery.State)
	assert.Contains(t, f.target.posts[0].text, "Coverage: Oct 31–Nov 07")
	assert.False(t, report.EndedAt.IsZero())
	assert.Contains(t, f.llm.prompts[0], "We build agent tooling.")
}

func TestBriefService_Run_RerunDoesNotRepost(t *testing.T) {
	f := newBriefFixture(t, 5, "")
	f.llm.replies = []string{generatedBrief, generatedBrief}

	_, err := f.svc.Run(context.Background(), domain.RunOptions{})
	require.NoError(t, err)
	posted := f.target.count()

	report, err := f.svc.Run(context.Background(), domain.RunOptions{})
	require.NoError(t, err)
	assert.True(t, report.Delivery.AlreadyDelivered)
	assert.Equal(t, posted, f.target.count())
}

func TestBriefService_Run_DryRun(t *testing.T) {
	f := newBriefFixture(t, 30, "")
	f.llm.replies = []string{"not json at all"}

	report, err := f.svc.Run(context.Background(), domain.RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, f.llm.calls(), "only the ranking call runs")
	assert.True(t, report.Stats.Fallback)
	assert.Equal(t, 15, report.Stats.Detailed)
	assert.Equal(t, 10, report.Stats.Brief)
	assert.Equal(t, 5, report.Stats.Dropped)
	assert.Nil(t, report.Brief)
	assert.Empty(t, f.artifacts.saved)
	assert.Equal(t, 0, f.target.count())
}

func TestBriefService_Run_NoPost(t *testing.T) {
	f := newBriefFixture(t, 3, "")
	f.llm.replies = []string{generatedBrief}

	report, err := f.svc.Run(context.Background(), domain.RunOptions{NoPost: true})
	require.NoError(t, err)
	require.NotNil(t, report.Brief)
	assert.Nil(t, report.Delivery)
	assert.Equal(t, 0, f.target.count())
}

func TestBriefService_Run_EmptyWindow(t *testing.T) {
	f := newBriefFixture(t, 0, "")

	report, err := f.svc.Run(context.Background(), domain.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Stats.InWindow)
	assert.Equal(t, 3, report.Stats.Unique)
	assert.Equal(t, 0, f.llm.calls())
	assert.Nil(t, report.Brief)
}

func TestBriefService_Run_StageErrors(t *testing.T) {
	t.Run("listing", func(t *testing.T) {
		f := newBriefFixture(t, 3, "")
		f.store.listErr = errors.New("invalid grant")

		_, err := f.svc.Run(context.Background(), domain.RunOptions{})
		assert.Equal(t, domain.KindSourceList, domain.KindOf(err))
	})

	t.Run("generation", func(t *testing.T) {
		f := newBriefFixture(t, 3, "")
		f.llm.err = errors.New("529 overloaded")

		_, err := f.svc.Run(context.Background(), domain.RunOptions{})
		var se *domain.StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "generate", se.Stage)
	})

	t.Run("store", func(t *testing.T) {
		f := newBriefFixture(t, 3, "")
		f.llm.replies = []string{generatedBrief}
		f.artifacts.saveErr = errors.New("read-only file system")

		_, err := f.svc.Run(context.Background(), domain.RunOptions{})
		assert.Equal(t, domain.KindPersistence, domain.KindOf(err))
		assert.Equal(t, 0, f.target.count())
	})

	t.Run("delivery", func(t *testing.T) {
		f := newBriefFixture(t, 3, "")
		f.llm.replies = []string{generatedBrief}
		f.target.failAt = 2

		report, err := f.svc.Run(context.Background(), domain.RunOptions{})
		assert.Equal(t, domain.KindDeliveryTarget, domain.KindOf(err))
		require.NotNil(t, report.Brief, "artifact is stored before delivery")
		assert.Equal(t, domain.StateRootPosted, report.Delivery.State)
	})
}

func TestBriefService_Run_ContextMail(t *testing.T) {
	f := newBriefFixture(t, 2, "from:notes")
	f.llm.replies = []string{generatedBrief}

	_, err := f.svc.Run(context.Background(), domain.RunOptions{NoPost: true})
	require.NoError(t, err)

	assert.Contains(t, f.store.queries, "newer_than:7d from:notes")
	assert.Contains(t, f.llm.prompts[0], "RECENT CONTEXT MAIL:")
	assert.Contains(t, f.llm.prompts[0], "TEAM CONTEXT:")
}

func TestBriefService_Post(t *testing.T) {
	f := newBriefFixture(t, 0, "")
	f.artifacts.contents["2025-11-07"] = generatedBrief

	outcome, err := f.svc.Post(context.Background(), "2025-11-07")
	require.NoError(t, err)
	assert.Equal(t, domain.StateComplete, outcome.State)
	assert.Contains(t, f.target.posts[0].text, "🤖 *AI Builder Brief*")

	_, err = f.svc.Post(context.Background(), "1999-01-01")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElapsed(t *testing.T) {
	assert.Zero(t, Elapsed(nil))
	r := &domain.RunReport{StartedAt: fixedNow, EndedAt: fixedNow.Add(90 * time.Second)}
	assert.Equal(t, 90*time.Second, Elapsed(r))
}

func TestBriefService_MemoryStores_PostAfterRun(t *testing.T) {
	msgs := []*domain.RawMessage{
		newsletter("a", fixedNow.Add(-time.Hour).UnixMilli(), "Agents ship", "<p>https://example.com/agents-ship</p>"),
		newsletter("b", fixedNow.Add(-2*time.Hour).UnixMilli(), "Evals", "<p>https://example.com/evals-post</p>"),
	}
	llm := &mockLLM{replies: []string{generatedBrief}}
	target := &mockTarget{}
	artifacts := memory.NewArtifactStore()

	rc := domain.DefaultRunContext()
	rc.Location = time.UTC
	rc.Now = func() time.Time { return fixedNow }

	prompts := newMockPromptStore()
	svc := NewBriefService(
		BriefConfig{Query: "label:news", Run: rc},
		NewIngestor(newMockMessageStore(10, msgs...), &stubCanonicaliser{}),
		NewPrioritiser(llm, prompts),
		NewGenerator(llm, prompts, artifacts),
		artifacts,
		newTestDeliverer(target, memory.NewRecordStore()),
		nil,
	)

	report, err := svc.Run(context.Background(), domain.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, "memory://2025-11-07", report.Brief.Path)
	require.NotNil(t, report.Delivery)
	assert.Equal(t, domain.StateComplete, report.Delivery.State)
	posted := target.count()

	outcome, err := svc.Post(context.Background(), "2025-11-07")
	require.NoError(t, err)
	assert.True(t, outcome.AlreadyDelivered)
	assert.Equal(t, posted, target.count())

	_, err = svc.Post(context.Background(), "2025-10-31")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
