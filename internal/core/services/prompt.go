package services

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

// renderPrompt loads the named template and executes it with data.
func renderPrompt(store driven.PromptStore, name string, data any) (string, error) {
	raw, err := store.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse prompt %s: %w", name, err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return b.String(), nil
}

// systemPrompt returns the named system prompt, or "" if it cannot be loaded.
func systemPrompt(store driven.PromptStore, name string) string {
	s, err := store.Load(name)
	if err != nil {
		logger.Debug("no system prompt %s: %v", name, err)
		return ""
	}
	return strings.TrimSpace(s)
}
