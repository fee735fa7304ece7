package ai

import (
	"context"

	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// unavailable stands in for an LLM that could not be configured.
// Every call fails with the configuration error.
type unavailable struct {
	err error
}

// Unavailable returns an LLMService whose calls all fail with err.
// Commands that never reach the LLM keep working.
func Unavailable(err error) driven.LLMService {
	return &unavailable{err: err}
}

func (u *unavailable) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", u.err
}

func (u *unavailable) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	return "", u.err
}

func (u *unavailable) ModelName() string { return "" }

func (u *unavailable) Close() error { return nil }
