package driving

import "github.com/custodia-labs/pulse-brief/internal/core/domain"

// SettingsService reads and updates persisted configuration.
type SettingsService interface {
	// Get resolves the effective settings from config and environment.
	Get() (*domain.Settings, error)

	// Set parses and persists a single dotted key.
	Set(key, raw string) error

	// Keys lists every key Set accepts.
	Keys() []string
}
