package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

const (
	defaultSubject = "Newsletter"
	defaultSender  = "unknown"

	// contextTextLimit bounds each context message body.
	contextTextLimit = 200_000
)

// LinkResolver builds a link back to a message at the store, or "" if it cannot.
type LinkResolver func(msg *domain.RawMessage) string

// Ingestor pulls messages from the store and turns them into documents.
type Ingestor struct {
	store   driven.MessageStore
	canon   driven.Canonicaliser
	resolve LinkResolver
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithLinkResolver sets how secondary links are built.
func WithLinkResolver(fn LinkResolver) IngestorOption {
	return func(i *Ingestor) {
		if fn != nil {
			i.resolve = fn
		}
	}
}

// NewIngestor creates an ingestor over a message store and canonicaliser.
func NewIngestor(store driven.MessageStore, canon driven.Canonicaliser, opts ...IngestorOption) *Ingestor {
	i := &Ingestor{
		store:   store,
		canon:   canon,
		resolve: func(*domain.RawMessage) string { return "" },
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Fetch returns the newest-first, deduplicated documents matching query and filter.
// A listing failure aborts the call; per-message failures are skipped and counted.
func (i *Ingestor) Fetch(
	ctx context.Context,
	filter domain.TimeFilter,
	query string,
) ([]domain.Document, domain.RunStats, error) {
	var stats domain.RunStats

	ids, err := i.listAll(ctx, sourceQuery(filter, query))
	if err != nil {
		return nil, stats, err
	}
	stats.Listed = len(ids)

	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		msg, err := i.store.Get(ctx, id)
		if err != nil {
			stats.FetchErrors++
			logger.Warn("skipping message %s: %v", id, domain.NewStageError("ingest", domain.KindSourceFetch, err))
			continue
		}
		stats.Fetched++

		if !filter.Keep(msg.InternalDate) {
			stats.Skipped++
			continue
		}

		docs = append(docs, i.toDocument(msg))
	}

	docs = Dedup(docs)
	stats.Unique = len(docs)
	logger.Debug("ingest: listed=%d fetched=%d errors=%d skipped=%d unique=%d",
		stats.Listed, stats.Fetched, stats.FetchErrors, stats.Skipped, stats.Unique)

	return docs, stats, nil
}

// FetchContext returns context messages newest-first without deduplication.
// Bodies are capped so a single long thread cannot swamp a prompt.
func (i *Ingestor) FetchContext(ctx context.Context, filter domain.TimeFilter, query string) ([]domain.Document, error) {
	ids, err := i.listAll(ctx, sourceQuery(filter, query))
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		msg, err := i.store.Get(ctx, id)
		if err != nil {
			logger.Warn("skipping context message %s: %v", id, err)
			continue
		}
		if !filter.Keep(msg.InternalDate) {
			continue
		}

		title, ok := msg.Header("Message-Id")
		if !ok || title == "" {
			title = msg.ID
		}
		docs = append(docs, domain.Document{
			Title:        title,
			Source:       "gmail",
			Date:         domain.FormatInternalDate(msg.InternalDate),
			InternalDate: msg.InternalDate,
			Text:         TruncateBytes(i.body(msg), contextTextLimit),
		})
	}

	sortNewestFirst(docs)
	return docs, nil
}

// listAll pages through the store until the cursor runs out.
func (i *Ingestor) listAll(ctx context.Context, query string) ([]string, error) {
	var ids []string
	cursor := ""
	for {
		page, next, err := i.store.List(ctx, query, cursor)
		if err != nil {
			return nil, domain.NewStageError("ingest", domain.KindSourceList, fmt.Errorf("list messages: %w", err))
		}
		ids = append(ids, page...)
		if next == "" {
			return ids, nil
		}
		cursor = next
	}
}

// toDocument canonicalises a raw message.
func (i *Ingestor) toDocument(msg *domain.RawMessage) domain.Document {
	title, ok := msg.Header("Subject")
	if !ok || title == "" {
		title = defaultSubject
	}
	source, ok := msg.Header("From")
	if !ok || source == "" {
		source = defaultSender
	}

	text := i.body(msg)
	return domain.Document{
		Title:         title,
		Source:        source,
		Date:          domain.FormatInternalDate(msg.InternalDate),
		PrimaryLink:   i.canon.PrimaryLink(text),
		SecondaryLink: i.resolve(msg),
		InternalDate:  msg.InternalDate,
		Text:          text,
	}
}

// body renders the first HTML part, falling back to the store snippet.
func (i *Ingestor) body(msg *domain.RawMessage) string {
	html, ok := FirstHTMLPart(msg.Payload)
	if !ok {
		return msg.Snippet
	}
	md, err := i.canon.ToMarkdown(html)
	if err != nil {
		logger.Debug("canonicalise %s, using snippet: %v", msg.ID, err)
		return msg.Snippet
	}
	return md
}

// Dedup sorts documents newest-first and keeps the first document per dedup key.
// Because of the pre-sort the survivor of each key is its most recent document.
func Dedup(docs []domain.Document) []domain.Document {
	sorted := make([]domain.Document, len(docs))
	copy(sorted, docs)
	sortNewestFirst(sorted)

	seen := make(map[string]struct{}, len(sorted))
	out := make([]domain.Document, 0, len(sorted))
	for _, d := range sorted {
		key := d.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, d)
	}
	return out
}

func sortNewestFirst(docs []domain.Document) {
	sort.SliceStable(docs, func(a, b int) bool {
		return docs[a].InternalDate > docs[b].InternalDate
	})
}

// sourceQuery pushes trailing-days filters down to the store.
func sourceQuery(filter domain.TimeFilter, query string) string {
	if filter.Mode != domain.FilterTrailingDays {
		return query
	}
	return strings.TrimSpace(fmt.Sprintf("newer_than:%dd %s", filter.Days, query))
}
