package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		provider AIProvider
		want     bool
	}{
		{AIProviderAnthropic, true},
		{AIProviderOpenAI, true},
		{AIProvider("ollama"), false},
		{AIProvider(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Anthropic (cloud)", AIProviderAnthropic.Description())
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.True(t, LLMSettings{Provider: AIProviderAnthropic, APIKey: "k"}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderAnthropic}.IsConfigured())
	assert.False(t, LLMSettings{Provider: "bogus", APIKey: "k"}.IsConfigured())
}

func TestSlackSettings_IsConfigured(t *testing.T) {
	assert.True(t, SlackSettings{Token: "xoxb", Channel: "#ai-brief"}.IsConfigured())
	assert.False(t, SlackSettings{Token: "xoxb"}.IsConfigured())
	assert.False(t, SlackSettings{Channel: "#ai-brief"}.IsConfigured())
}
