package chunker

import "strings"

// Kind tags a line of delivery text.
type Kind int

const (
	// Plain is ordinary text, including blank lines.
	Plain Kind = iota
	// Header opens a section.
	Header
	// Bullet is a list item.
	Bullet
	// Divider is a horizontal rule.
	Divider
	// SourcesHeading opens the trailing sources section.
	SourcesHeading
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Header:
		return "header"
	case Bullet:
		return "bullet"
	case Divider:
		return "divider"
	case SourcesHeading:
		return "sources"
	default:
		return "plain"
	}
}

// Line is a classified line.
type Line struct {
	Kind Kind

	// Level is the header depth: 1-6 for markdown headers,
	// 2 for a bold-led line and 3 for an italic line.
	Level int

	// Marker is the syntax that produced the kind: "#", "**", "*", "_",
	// "-", "•", "---" or "━". Empty for plain lines.
	Marker string

	// Indent is the leading whitespace.
	Indent string

	// Body is the line text without indent or marker.
	Body string
}

// OpensSection reports whether the line starts a new delivery section.
func (l Line) OpensSection() bool {
	return l.Kind == Header || l.Kind == SourcesHeading
}

// IsMarkdownHeader reports whether the line is a "#" header.
func (l Line) IsMarkdownHeader() bool {
	return l.Kind == Header && l.Marker == "#"
}

// Classify tags a single line. Markdown and Slack mrkdwn forms are both recognised
// so the same classifier serves before and after formatting.
func Classify(line string) Line {
	trimmed := strings.TrimSpace(line)
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	l := Line{Kind: Plain, Indent: indent, Body: trimmed}

	switch {
	case trimmed == "":
		return l

	case strings.HasPrefix(trimmed, "**Sources"):
		l.Kind = SourcesHeading
		l.Marker = "**"
		return l

	case isRule(trimmed, '-'):
		l.Kind, l.Marker, l.Body = Divider, "---", ""
		return l

	case isRule(trimmed, '━'):
		l.Kind, l.Marker, l.Body = Divider, "━", ""
		return l
	}

	if level := headerLevel(trimmed); level > 0 {
		l.Kind, l.Level, l.Marker = Header, level, "#"
		l.Body = strings.TrimSpace(trimmed[level:])
		return l
	}

	for _, b := range []string{"- ", "• ", "* "} {
		if strings.HasPrefix(trimmed, b) {
			l.Kind, l.Marker = Bullet, strings.TrimSpace(b)
			l.Body = strings.TrimSpace(trimmed[len(b):])
			return l
		}
	}

	switch {
	case strings.HasPrefix(trimmed, "**"):
		l.Kind, l.Level, l.Marker = Header, 2, "**"
	case strings.HasPrefix(trimmed, "*"):
		l.Kind, l.Level, l.Marker = Header, 2, "*"
	case len(trimmed) > 2 && strings.HasPrefix(trimmed, "_") && strings.HasSuffix(trimmed, "_"):
		l.Kind, l.Level, l.Marker = Header, 3, "_"
	}
	return l
}

// headerLevel returns n for a line starting with n '#' and a space, else 0.
func headerLevel(s string) int {
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	if n == 0 || n > 6 || n >= len(s) || s[n] != ' ' {
		return 0
	}
	return n
}

// isRule reports whether s is three or more of r and nothing else.
func isRule(s string, r rune) bool {
	count := 0
	for _, c := range s {
		if c != r {
			return false
		}
		count++
	}
	return count >= 3
}
