package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

// SplitSources separates the trailing sources section from the primary content.
// The section starts at the first divider or sources heading line.
// Both parts are trimmed; sources is "" when there is no such line.
func SplitSources(text string) (primary, sources string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if k := Classify(line).Kind; k == Divider || k == SourcesHeading {
			primary = strings.TrimSpace(strings.Join(lines[:i], "\n"))
			sources = strings.TrimSpace(strings.Join(lines[i:], "\n"))
			return primary, sources
		}
	}
	return strings.TrimSpace(text), ""
}

// LabelSources prepares a sources section for posting as its own reply.
// Leading dividers are dropped, since the reply already separates the section.
// label is put on the section heading, so it is measured with the first
// chunk and never ends up alone; a section without a heading gets one.
func LabelSources(sources, label string) string {
	lines := strings.Split(strings.TrimSpace(sources), "\n")
	for len(lines) > 0 {
		if k := Classify(lines[0]); k.Kind != Divider && k.Body != "" {
			break
		}
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return ""
	}

	first := Classify(lines[0])
	switch {
	case first.IsMarkdownHeader():
		lines[0] = label + " **" + first.Body + "**"
	case first.OpensSection():
		lines[0] = label + " " + first.Body
	default:
		lines = append([]string{label + " **Sources**"}, lines...)
	}
	return strings.Join(lines, "\n")
}

// Split cuts text into trimmed chunks of at most maxBytes.
//
// Text that fits is returned whole. Otherwise lines accumulate into sections:
// a section-opening line always starts a new section, and a line that would
// push a section past maxBytes starts one too. Text without any header falls
// back to plain line accumulation. A single line longer than maxBytes is
// hard-split at rune boundaries; it is the only way a chunk boundary can
// fall inside a line.
func Split(text string, maxBytes int) []domain.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxBytes <= 0 || len(text) <= maxBytes {
		return []domain.Chunk{{Position: 0, Content: text}}
	}

	lines := strings.Split(text, "\n")
	sections := accumulate(lines, maxBytes, hasHeader(lines))

	chunks := make([]domain.Chunk, 0, len(sections))
	for _, s := range sections {
		for _, piece := range hardSplit(s, maxBytes) {
			chunks = append(chunks, domain.Chunk{Position: len(chunks), Content: piece})
		}
	}
	return chunks
}

func hasHeader(lines []string) bool {
	for _, line := range lines {
		if Classify(line).OpensSection() {
			return true
		}
	}
	return false
}

// accumulate groups lines into trimmed, non-blank sections.
func accumulate(lines []string, maxBytes int, byHeader bool) []string {
	var sections []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			sections = append(sections, s)
		}
		cur.Reset()
	}

	for _, line := range lines {
		if byHeader && Classify(line).OpensSection() {
			flush()
		} else if cur.Len()+len(line)+1 > maxBytes && strings.TrimSpace(cur.String()) != "" {
			flush()
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	flush()

	return sections
}

// hardSplit cuts s into pieces of at most maxBytes without splitting a rune.
// Concatenating the pieces gives back s.
func hardSplit(s string, maxBytes int) []string {
	if len(s) <= maxBytes {
		return []string{s}
	}
	var pieces []string
	for len(s) > maxBytes {
		cut := maxBytes
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 {
			_, cut = utf8.DecodeRuneInString(s)
		}
		pieces = append(pieces, s[:cut])
		s = s[cut:]
	}
	if s != "" {
		pieces = append(pieces, s)
	}
	return pieces
}
