package domain

const unknownDescription = "Unknown"

// AIProvider identifies an LLM service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// AllAIProviders returns the supported providers in display order.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderAnthropic, AIProviderOpenAI}
}

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderAnthropic, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is used for brief generation.
	Model string

	// RankModel is used for the ranking pass. Falls back to Model when empty.
	RankModel string

	// APIKey is read from the environment, never from the config file.
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	return l.Provider.IsValid() && l.APIKey != ""
}

// GmailSettings holds message store configuration.
type GmailSettings struct {
	// Query is the newsletter filter expression.
	Query string

	// ContextQuery selects optional team context mail. Empty disables it.
	ContextQuery string

	// PageSize is the listing page size.
	PageSize int64

	// CredentialsFile is the OAuth client secret JSON.
	CredentialsFile string

	// TokenFile caches the authorised user token.
	TokenFile string
}

// SlackSettings holds delivery target configuration.
type SlackSettings struct {
	// Token is the bot token, read from the environment.
	Token string

	// Channel is the destination channel name or ID.
	Channel string
}

// IsConfigured returns true if delivery can run.
func (s SlackSettings) IsConfigured() bool {
	return s.Token != "" && s.Channel != ""
}

// Settings is the full application configuration.
type Settings struct {
	Gmail GmailSettings
	LLM   LLMSettings
	Slack SlackSettings
	Run   RunContext

	// ScheduleIntervalHours is the weekly-brief task interval.
	ScheduleIntervalHours int
}
