package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

const (
	headerTimeLayout = "January 02, 2006 at 15:04 UTC"
	sourcesLabel     = "📚"
)

// Deliverer posts an artifact as a thread: a root message carrying the header
// and first chunk, one reply per remaining chunk, then the sources section.
// A completed sequence is recorded beside the artifact and never repeated.
type Deliverer struct {
	target   driven.DeliveryTarget
	records  driven.DeliveryRecordStore
	splitter driven.SectionSplitter
	body     driven.PostProcessorPipeline
	sources  driven.PostProcessorPipeline
	webBase  string
	now      func() time.Time
}

// DelivererOption configures a Deliverer.
type DelivererOption func(*Deliverer)

// WithWebBaseURL adds a deep link to the stored artifact in the header.
func WithWebBaseURL(base string) DelivererOption {
	return func(d *Deliverer) {
		d.webBase = strings.TrimRight(base, "/")
	}
}

// WithSourcesPipeline formats the sources section with its own pipeline.
// By default the body pipeline is used.
func WithSourcesPipeline(p driven.PostProcessorPipeline) DelivererOption {
	return func(d *Deliverer) {
		d.sources = p
	}
}

// WithDeliveryClock sets the clock used for headers and records.
func WithDeliveryClock(now func() time.Time) DelivererOption {
	return func(d *Deliverer) {
		d.now = now
	}
}

// NewDeliverer creates a delivery engine.
func NewDeliverer(
	target driven.DeliveryTarget,
	records driven.DeliveryRecordStore,
	splitter driven.SectionSplitter,
	body driven.PostProcessorPipeline,
	opts ...DelivererOption,
) *Deliverer {
	d := &Deliverer{
		target:   target,
		records:  records,
		splitter: splitter,
		body:     body,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.sources == nil {
		d.sources = d.body
	}
	return d
}

// Deliver posts req as a thread unless a record shows it was already delivered.
// The returned outcome reports how far the sequence got, also on error.
func (d *Deliverer) Deliver(ctx context.Context, req domain.DeliveryRequest) (*domain.DeliveryOutcome, error) {
	outcome := &domain.DeliveryOutcome{State: domain.StateNotPosted}

	if req.ArtifactPath != "" {
		rec, err := d.records.Get(ctx, req.ArtifactPath)
		if err != nil {
			return outcome, d.fail(outcome, domain.KindPersistence, fmt.Errorf("read delivery record: %w", err))
		}
		if rec != nil {
			logger.Info("%s already delivered at %s, skipping", req.ArtifactID, rec.CompletedAt.Format(time.RFC3339))
			outcome.State = domain.StateComplete
			outcome.AlreadyDelivered = true
			outcome.ThreadID = rec.ThreadID
			outcome.Record = rec
			return outcome, nil
		}
	}

	if d.target == nil {
		return outcome, d.fail(outcome, domain.KindDeliveryTarget, domain.ErrDeliveryNotConfigured)
	}

	primary, sources := d.splitter.SplitSources(req.Content)
	chunks, err := d.body.Process(ctx, primary)
	if err != nil {
		return outcome, d.fail(outcome, domain.KindDeliveryTarget, fmt.Errorf("chunk brief: %w", err))
	}
	var sourceChunks []domain.Chunk
	if sources = d.splitter.LabelSources(sources, sourcesLabel); sources != "" {
		if sourceChunks, err = d.sources.Process(ctx, sources); err != nil {
			return outcome, d.fail(outcome, domain.KindDeliveryTarget, fmt.Errorf("format sources: %w", err))
		}
	}

	root := d.header(req)
	if len(chunks) > 0 {
		root += "\n\n" + chunks[0].Content
	}
	threadID, err := d.target.PostRoot(ctx, root)
	if err != nil {
		return outcome, d.fail(outcome, domain.KindDeliveryTarget, fmt.Errorf("post root: %w", err))
	}
	outcome.State = domain.StateRootPosted
	outcome.ThreadID = threadID
	logger.Debug("root posted to %s, thread %s", d.target.Destination(), threadID)

	for i := 1; i < len(chunks); i++ {
		if err := d.target.PostReply(ctx, threadID, chunks[i].Content); err != nil {
			return outcome, d.fail(outcome, domain.KindDeliveryTarget, fmt.Errorf("post chunk %d: %w", i, err))
		}
		outcome.Replies++
	}
	outcome.State = domain.StateChildrenPosted

	for _, c := range sourceChunks {
		if err := d.target.PostReply(ctx, threadID, c.Content); err != nil {
			return outcome, d.fail(outcome, domain.KindDeliveryTarget, fmt.Errorf("post sources: %w", err))
		}
	}
	outcome.State = domain.StateSourcesPosted

	rec := domain.DeliveryRecord{
		ArtifactID:  req.ArtifactID,
		CompletedAt: d.now().UTC(),
		Channel:     d.target.Destination(),
		ThreadID:    threadID,
		ChunkCount:  len(chunks),
	}
	if req.ArtifactPath != "" {
		if err := d.records.Save(ctx, req.ArtifactPath, rec); err != nil {
			return outcome, d.fail(outcome, domain.KindPersistence, fmt.Errorf("write delivery record: %w", err))
		}
	}
	outcome.State = domain.StateComplete
	outcome.Record = &rec

	logger.Info("brief posted to %s (thread %s, %d replies, sources: %t)",
		d.target.Destination(), threadID, outcome.Replies, len(sourceChunks) > 0)
	return outcome, nil
}

// header builds the root line. A window gives a coverage header with an
// optional deep link; without one the header carries the post time.
func (d *Deliverer) header(req domain.DeliveryRequest) string {
	if req.Window != nil {
		h := "📊 *AI Pulse Brief* — Coverage: " + req.Window.Label
		if d.webBase != "" && req.ArtifactID != "" {
			h += fmt.Sprintf("\n🔗 <%s/brief/%s|Read full brief on web>", d.webBase, req.ArtifactID)
		}
		return h
	}

	h := "🤖 *AI Builder Brief* — " + d.now().UTC().Format(headerTimeLayout)
	if req.ArtifactPath != "" {
		h += fmt.Sprintf("\n📄 _Saved to:_ `%s`", filepath.Base(req.ArtifactPath))
	}
	return h
}

// fail wraps err with the delivery stage and the state reached so far.
func (d *Deliverer) fail(outcome *domain.DeliveryOutcome, kind domain.ErrorKind, err error) error {
	var dest *domain.DestinationError
	if errors.As(err, &dest) && dest.Hint != "" {
		logger.Error("%s: %s", dest.Code, dest.Hint)
	}
	se := domain.NewStageError("deliver", kind, err)
	se.State = outcome.State
	return se
}
