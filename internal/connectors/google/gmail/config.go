package gmail

import (
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
)

// DefaultUser addresses the authenticated mailbox.
const DefaultUser = "me"

// Config holds Gmail store configuration.
type Config struct {
	// User is the mailbox to read.
	User string
	// LabelIDs limits listing to specific label IDs (optional).
	LabelIDs []string
	// PageSize is the page size for list requests.
	PageSize int64
	// IncludeSpamTrash includes spam and trash if true.
	IncludeSpamTrash bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		User:     DefaultUser,
		PageSize: 100,
	}
}

// ParseConfig reads the gmail.* keys from the config store.
// Missing or invalid values keep their defaults.
func ParseConfig(cs driven.ConfigStore) *Config {
	cfg := DefaultConfig()
	if cs == nil {
		return cfg
	}

	if v := cs.GetString("gmail.user"); v != "" {
		cfg.User = v
	}
	if ids := cs.GetStringSlice("gmail.label_ids"); len(ids) > 0 {
		cfg.LabelIDs = ids
	}
	if n := cs.GetInt("gmail.page_size"); n > 0 && n <= 500 {
		cfg.PageSize = int64(n)
	}
	cfg.IncludeSpamTrash = cs.GetBool("gmail.include_spam_trash")

	return cfg
}
