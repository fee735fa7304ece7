package chunker

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		line   string
		kind   Kind
		level  int
		marker string
		body   string
	}{
		{line: "", kind: Plain},
		{line: "   ", kind: Plain},
		{line: "Just some text.", kind: Plain, body: "Just some text."},
		{line: "# Weekly AI Brief", kind: Header, level: 1, marker: "#", body: "Weekly AI Brief"},
		{line: "## What this means", kind: Header, level: 2, marker: "#", body: "What this means"},
		{line: "### Sub", kind: Header, level: 3, marker: "#", body: "Sub"},
		{line: "#hashtag", kind: Plain, body: "#hashtag"},
		{line: "####### too deep", kind: Plain, body: "####### too deep"},
		{line: "*Slack header*", kind: Header, level: 2, marker: "*", body: "*Slack header*"},
		{line: "**Agents ship** (Every, Nov 06)", kind: Header, level: 2, marker: "**", body: "**Agents ship** (Every, Nov 06)"},
		{line: "_Italic header_", kind: Header, level: 3, marker: "_", body: "_Italic header_"},
		{line: "- item", kind: Bullet, marker: "-", body: "item"},
		{line: "• item", kind: Bullet, marker: "•", body: "item"},
		{line: "* item", kind: Bullet, marker: "*", body: "item"},
		{line: "  - nested", kind: Bullet, marker: "-", body: "nested"},
		{line: "---", kind: Divider, marker: "---"},
		{line: "  -----  ", kind: Divider, marker: "---"},
		{line: "━━━━━━━━━━━━━━━━━━━━", kind: Divider, marker: "━"},
		{line: "--", kind: Plain, body: "--"},
		{line: "**Sources:** Every, TLDR", kind: SourcesHeading, marker: "**", body: "**Sources:** Every, TLDR"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := Classify(tt.line)
			if got.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Level != tt.level {
				t.Errorf("level = %d, want %d", got.Level, tt.level)
			}
			if got.Marker != tt.marker {
				t.Errorf("marker = %q, want %q", got.Marker, tt.marker)
			}
			if got.Body != tt.body {
				t.Errorf("body = %q, want %q", got.Body, tt.body)
			}
		})
	}
}

func TestClassify_Indent(t *testing.T) {
	got := Classify("    - deep")
	if got.Indent != "    " {
		t.Errorf("indent = %q, want 4 spaces", got.Indent)
	}
}

func TestLine_OpensSection(t *testing.T) {
	if !Classify("## x").OpensSection() {
		t.Error("markdown header should open a section")
	}
	if !Classify("**Sources:**").OpensSection() {
		t.Error("sources heading should open a section")
	}
	if Classify("• bullet").OpensSection() {
		t.Error("bullet should not open a section")
	}
	if Classify("---").OpensSection() {
		t.Error("divider should not open a section")
	}
}

func TestKind_String(t *testing.T) {
	if Header.String() != "header" || Plain.String() != "plain" || SourcesHeading.String() != "sources" {
		t.Error("unexpected kind names")
	}
}
