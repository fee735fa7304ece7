package domain

import "time"

// DateLayout is the ISO-8601 form used for Document.Date.
const DateLayout = "2006-01-02T15:04:05Z"

// Document is a canonicalised newsletter ready for ranking.
type Document struct {
	// Title is the message subject.
	Title string

	// Source is the sender label.
	Source string

	// Date is the receive time formatted with DateLayout in UTC.
	Date string

	// PrimaryLink is the first qualifying absolute link found in the body.
	PrimaryLink string

	// SecondaryLink is a link back to the message at the store.
	SecondaryLink string

	// InternalDate is the store's receive time in milliseconds since epoch.
	InternalDate int64

	// Text is the canonicalised body, or the store snippet when no body part rendered.
	Text string
}

// DedupKey returns the identity used to collapse duplicate documents.
func (d *Document) DedupKey() string {
	if d.PrimaryLink != "" {
		return d.PrimaryLink
	}
	if d.SecondaryLink != "" {
		return d.SecondaryLink
	}
	return d.Title
}

// BestLink returns the primary link, else the secondary link.
func (d *Document) BestLink() string {
	if d.PrimaryLink != "" {
		return d.PrimaryLink
	}
	return d.SecondaryLink
}

// DateOnly returns the YYYY-MM-DD prefix of Date.
func (d *Document) DateOnly() string {
	if len(d.Date) >= 10 {
		return d.Date[:10]
	}
	return d.Date
}

// FormatInternalDate renders a millisecond timestamp with DateLayout.
func FormatInternalDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(DateLayout)
}

// Chunk is an ordered block of delivery text no larger than the chunk ceiling,
// except when a single oversized line had to be hard-split.
type Chunk struct {
	// Position is the chunk's zero-based order within the post sequence.
	Position int

	// Content is the chunk text, trimmed of surrounding whitespace.
	Content string
}
