package gmail

import (
	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// MessageToRaw converts a full-format Gmail message to a RawMessage.
// Top-level headers come from the payload root.
func MessageToRaw(msg *gmail.Message) *domain.RawMessage {
	raw := &domain.RawMessage{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		InternalDate: msg.InternalDate,
		Snippet:      msg.Snippet,
	}
	if msg.Payload != nil {
		raw.Headers = convertHeaders(msg.Payload.Headers)
		raw.Payload = convertPart(msg.Payload)
	}
	return raw
}

func convertPart(p *gmail.MessagePart) *domain.MessagePart {
	part := &domain.MessagePart{
		MimeType: p.MimeType,
		Filename: p.Filename,
		Headers:  convertHeaders(p.Headers),
	}
	if p.Body != nil {
		part.Data = p.Body.Data
	}
	for _, child := range p.Parts {
		if child != nil {
			part.Parts = append(part.Parts, convertPart(child))
		}
	}
	return part
}

func convertHeaders(hs []*gmail.MessagePartHeader) []domain.Header {
	if len(hs) == 0 {
		return nil
	}
	out := make([]domain.Header, 0, len(hs))
	for _, h := range hs {
		if h != nil {
			out = append(out, domain.Header{Name: h.Name, Value: h.Value})
		}
	}
	return out
}
