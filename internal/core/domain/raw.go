package domain

import "strings"

// Header is a single name/value mail header.
type Header struct {
	Name  string
	Value string
}

// MessagePart is one node of a nested MIME body tree.
// Data holds the body exactly as delivered by the store (base64url text).
type MessagePart struct {
	MimeType string
	Filename string
	Headers  []Header
	Data     string
	Parts    []*MessagePart
}

// RawMessage is a per-run snapshot of a message from the message store.
// Identity is ID; it is never mutated after fetch.
type RawMessage struct {
	// ID is the store's message identifier.
	ID string

	// ThreadID groups related messages at the store.
	ThreadID string

	// InternalDate is the store's receive time in milliseconds since epoch.
	InternalDate int64

	// Snippet is a short plain-text preview supplied by the store.
	Snippet string

	// Headers are the top-level message headers.
	Headers []Header

	// Payload is the root of the body tree. May be nil.
	Payload *MessagePart
}

// Header returns the first header value matching name case-insensitively.
func (m *RawMessage) Header(name string) (string, bool) {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
