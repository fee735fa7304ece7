package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocument_DedupKey(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{
			name: "primary link wins",
			doc:  Document{Title: "t", PrimaryLink: "https://example.com/a", SecondaryLink: "https://mail/x"},
			want: "https://example.com/a",
		},
		{
			name: "secondary link when no primary",
			doc:  Document{Title: "t", SecondaryLink: "https://mail/x"},
			want: "https://mail/x",
		},
		{
			name: "title as last resort",
			doc:  Document{Title: "Weekly AI"},
			want: "Weekly AI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.DedupKey())
		})
	}
}

func TestDocument_BestLink(t *testing.T) {
	assert.Equal(t, "p", (&Document{PrimaryLink: "p", SecondaryLink: "s"}).BestLink())
	assert.Equal(t, "s", (&Document{SecondaryLink: "s"}).BestLink())
	assert.Empty(t, (&Document{Title: "only title"}).BestLink())
}

func TestDocument_DateOnly(t *testing.T) {
	doc := Document{Date: "2025-11-07T14:03:00Z"}
	assert.Equal(t, "2025-11-07", doc.DateOnly())

	short := Document{Date: "2025"}
	assert.Equal(t, "2025", short.DateOnly())
}

func TestFormatInternalDate(t *testing.T) {
	// 2025-11-07T12:00:00Z
	assert.Equal(t, "2025-11-07T12:00:00Z", FormatInternalDate(1762516800000))
}

func TestRawMessage_Header(t *testing.T) {
	msg := RawMessage{Headers: []Header{
		{Name: "Subject", Value: "Hello"},
		{Name: "message-id", Value: "<abc@x>"},
		{Name: "SUBJECT", Value: "ignored duplicate"},
	}}

	v, ok := msg.Header("subject")
	assert.True(t, ok)
	assert.Equal(t, "Hello", v)

	v, ok = msg.Header("Message-Id")
	assert.True(t, ok)
	assert.Equal(t, "<abc@x>", v)

	_, ok = msg.Header("From")
	assert.False(t, ok)
}
