package gmail

import "github.com/custodia-labs/pulse-brief/internal/core/domain"

const searchURL = "https://mail.google.com/mail/u/0/#search/rfc822msgid:"

// ResolveWebURL links to a message in the Gmail web UI by its Message-Id header.
// Returns "" when the message has no Message-Id.
func ResolveWebURL(msg *domain.RawMessage) string {
	if msg == nil {
		return ""
	}
	id, ok := msg.Header("Message-Id")
	if !ok || id == "" {
		return ""
	}
	return searchURL + id
}
