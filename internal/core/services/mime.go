package services

import (
	"encoding/base64"
	"strings"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// FirstHTMLPart returns the decoded body of the first text/html leaf in
// document order. Leaves whose data does not decode are passed over.
// The tree is walked with an explicit stack, depth-first.
func FirstHTMLPart(root *domain.MessagePart) (string, bool) {
	if root == nil {
		return "", false
	}

	stack := []*domain.MessagePart{root}
	for len(stack) > 0 {
		part := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if part == nil {
			continue
		}

		if len(part.Parts) > 0 {
			// Push children in reverse so the first child is visited next.
			for i := len(part.Parts) - 1; i >= 0; i-- {
				stack = append(stack, part.Parts[i])
			}
			continue
		}

		if !strings.HasPrefix(strings.ToLower(part.MimeType), "text/html") || part.Data == "" {
			continue
		}
		if body, ok := decodeBase64URL(part.Data); ok {
			return body, true
		}
	}

	return "", false
}

// decodeBase64URL decodes padded or unpadded base64url text.
func decodeBase64URL(data string) (string, bool) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail usually omits padding
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return "", false
		}
	}
	return string(b), true
}
