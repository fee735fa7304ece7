package html

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Canonicaliser = (*Normaliser)(nil)

// Normaliser converts HTML to markdown.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Pre-compiled regular expressions.
var (
	// primaryLink requires 12+ characters after the scheme so tracking
	// pixels and short redirects do not qualify.
	primaryLink = regexp.MustCompile(`https?://[^\s)\]]{12,}`)
	whitespace  = regexp.MustCompile(`\s+`)
	multiSpaces = regexp.MustCompile(`[ \t]+`)
)

// dropped elements never contribute text.
const dropped = "head, script, style, noscript, svg, template"

// ToMarkdown converts an HTML document to markdown text.
func (n *Normaliser) ToMarkdown(src string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(dropped).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	w := &writer{}
	w.render(root)
	return w.String(), nil
}

// PrimaryLink returns the first qualifying absolute link in text, or "".
func (n *Normaliser) PrimaryLink(text string) string {
	return primaryLink.FindString(text)
}

// writer accumulates markdown blocks separated by blank lines.
type writer struct {
	blocks []string
	cur    strings.Builder
}

func (w *writer) render(s *goquery.Selection) {
	s.Contents().Each(func(_ int, child *goquery.Selection) {
		w.node(child)
	})
}

func (w *writer) node(s *goquery.Selection) {
	name := goquery.NodeName(s)
	switch name {
	case "#text":
		w.cur.WriteString(whitespace.ReplaceAllString(s.Text(), " "))

	case "h1", "h2", "h3", "h4", "h5", "h6":
		if t := inline(s); t != "" {
			w.block(strings.Repeat("#", int(name[1]-'0')) + " " + t)
		}

	case "ul", "ol":
		var items []string
		s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
			if t := inline(li); t != "" {
				items = append(items, "- "+t)
			}
		})
		w.block(strings.Join(items, "\n"))

	case "li":
		if t := inline(s); t != "" {
			w.block("- " + t)
		}

	case "p", "div", "section", "article", "header", "footer", "main", "center",
		"blockquote", "pre", "table", "tbody", "thead", "tr", "td", "th":
		w.flush()
		w.render(s)
		w.flush()

	case "a":
		text := inline(s)
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		switch {
		case isAbsolute(href) && text != "":
			w.cur.WriteString("[" + text + "](" + href + ")")
		case isAbsolute(href):
			w.cur.WriteString("<" + href + ">")
		default:
			w.cur.WriteString(text)
		}

	case "img":
		src, _ := s.Attr("src")
		if src == "" || isPixel(s) {
			return
		}
		alt, _ := s.Attr("alt")
		w.cur.WriteString("![" + strings.TrimSpace(alt) + "](" + src + ")")

	case "strong", "b":
		if t := inline(s); t != "" {
			w.cur.WriteString("**" + t + "**")
		}

	case "em", "i":
		if t := inline(s); t != "" {
			w.cur.WriteString("_" + t + "_")
		}

	case "br":
		w.cur.WriteString("\n")

	case "hr":
		w.block("---")

	case "#comment":

	default:
		w.render(s)
	}
}

// block writes text as a standalone block.
func (w *writer) block(text string) {
	w.flush()
	if text = strings.TrimSpace(text); text != "" {
		w.blocks = append(w.blocks, text)
	}
}

// flush closes the current block, dropping empty lines.
func (w *writer) flush() {
	raw := w.cur.String()
	w.cur.Reset()

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		w.blocks = append(w.blocks, strings.Join(lines, "\n"))
	}
}

// String returns the accumulated markdown.
func (w *writer) String() string {
	w.flush()
	return strings.Join(w.blocks, "\n\n")
}

// inline renders s on a single line.
func inline(s *goquery.Selection) string {
	w := &writer{}
	w.render(s)
	return strings.TrimSpace(whitespace.ReplaceAllString(w.String(), " "))
}

func isAbsolute(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")
}

// isPixel reports whether an image is a 1x1 tracking pixel.
func isPixel(s *goquery.Selection) bool {
	w, _ := s.Attr("width")
	h, _ := s.Attr("height")
	return w == "1" || h == "1" || w == "0" || h == "0"
}
