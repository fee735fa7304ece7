package postprocessors

import (
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/postprocessors/chunker"
	"github.com/custodia-labs/pulse-brief/internal/postprocessors/mrkdwn"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("mrkdwn", buildMrkdwn)
	r.Register("chunker", buildChunker)
}

func buildMrkdwn(_ map[string]any) (driven.PostProcessor, error) {
	return mrkdwn.New(), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - max_bytes (int): chunk ceiling in bytes (default: 3800)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "max_bytes"); n > 0 {
			opts = append(opts, chunker.WithMaxBytes(n))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
