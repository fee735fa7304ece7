package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driven"
	"github.com/custodia-labs/pulse-brief/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyGmailQuery        = "gmail.query"
	keyGmailContextQuery = "gmail.context_query"
	keyGmailPageSize     = "gmail.page_size"
	keyGmailCredentials  = "gmail.credentials_file"
	keyGmailToken        = "gmail.token_file"

	keyWindowTimezone = "window.timezone"
	keyWindowDays     = "window.days"
	keyWindowLookback = "window.lookback_days"

	keyLLMProvider  = "llm.provider"
	keyLLMModel     = "llm.model"
	keyLLMRankModel = "llm.rank_model"

	keySlackChannel = "slack.channel"

	keyOutputDir    = "output.dir"
	keyOutputMirror = "output.mirror_dir"
	keyOutputWeb    = "output.web_base_url"
	keyContextDir   = "context.dir"

	keyTwoStageThreshold = "pipeline.two_stage_threshold"
	keyFallbackHigh      = "pipeline.fallback_high"
	keyFallbackMedium    = "pipeline.fallback_medium"
	keyDetailCap         = "pipeline.detail_cap"
	keyBriefCap          = "pipeline.brief_cap"
	keyDetailBodyBytes   = "pipeline.detail_body_bytes"
	keyBriefBodyBytes    = "pipeline.brief_body_bytes"
	keyHistoryCount      = "pipeline.history_count"

	keyMaxChunkBytes       = "delivery.max_chunk_bytes"
	keyDeliveryProcessors  = "delivery.processors"
	keySchedulerEnabled    = "scheduler.enabled"
	keyScheduleInterval    = "scheduler.weekly_brief.interval"
	keyScheduleTaskEnabled = "scheduler.weekly_brief.enabled"
)

// Environment variables read for secrets and overrides.
const (
	EnvSlackToken   = "SLACK_BOT_TOKEN"
	EnvSlackChannel = "SLACK_CHANNEL"
)

// Defaults that have no home in domain.DefaultRunContext.
const (
	DefaultQuery        = "label:ai-newsletters"
	DefaultSlackChannel = "#ai-brief"
	DefaultPageSize     = 100
)

// ChunkerProcessor is the delivery processor that enforces the chunk ceiling.
const ChunkerProcessor = "chunker"

// DefaultDeliveryProcessors formats then chunks delivery text, so the chunker
// measures the text that is actually posted.
var DefaultDeliveryProcessors = []string{"mrkdwn", ChunkerProcessor}

// settingKind tells Set how to parse a value typed on the command line.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
	kindDuration
	kindList
)

var knownKeys = map[string]settingKind{
	keyGmailQuery:          kindString,
	keyGmailContextQuery:   kindString,
	keyGmailPageSize:       kindInt,
	keyGmailCredentials:    kindString,
	keyGmailToken:          kindString,
	keyWindowTimezone:      kindString,
	keyWindowDays:          kindInt,
	keyWindowLookback:      kindInt,
	keyLLMProvider:         kindString,
	keyLLMModel:            kindString,
	keyLLMRankModel:        kindString,
	keySlackChannel:        kindString,
	keyOutputDir:           kindString,
	keyOutputMirror:        kindString,
	keyOutputWeb:           kindString,
	keyContextDir:          kindString,
	keyTwoStageThreshold:   kindInt,
	keyFallbackHigh:        kindInt,
	keyFallbackMedium:      kindInt,
	keyDetailCap:           kindInt,
	keyBriefCap:            kindInt,
	keyDetailBodyBytes:     kindInt,
	keyBriefBodyBytes:      kindInt,
	keyHistoryCount:        kindInt,
	keyMaxChunkBytes:       kindInt,
	keyDeliveryProcessors:  kindList,
	keySchedulerEnabled:    kindBool,
	keyScheduleInterval:    kindDuration,
	keyScheduleTaskEnabled: kindBool,
}

// SettingsService assembles domain.Settings from the config store and
// environment. Secrets only ever come from the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	baseDir     string
	getenv      func(string) string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv replaces os.Getenv.
func WithEnv(getenv func(string) string) SettingsOption {
	return func(s *SettingsService) {
		s.getenv = getenv
	}
}

// NewSettingsService creates a settings service. Relative and default
// paths resolve against baseDir.
func NewSettingsService(configStore driven.ConfigStore, baseDir string, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		baseDir:     baseDir,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get builds the current settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	rc := domain.DefaultRunContext()

	if tz := s.configStore.GetString(keyWindowTimezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", keyWindowTimezone, tz, domain.ErrInvalidInput)
		}
		rc.Location = loc
	}
	rc.WindowDays = s.getInt(keyWindowDays, rc.WindowDays)
	rc.LookbackDays = s.getInt(keyWindowLookback, rc.LookbackDays)
	rc.TwoStageThreshold = s.getInt(keyTwoStageThreshold, rc.TwoStageThreshold)
	rc.FallbackHigh = s.getInt(keyFallbackHigh, rc.FallbackHigh)
	rc.FallbackMedium = s.getInt(keyFallbackMedium, rc.FallbackMedium)
	rc.DetailCap = s.getInt(keyDetailCap, rc.DetailCap)
	rc.BriefCap = s.getInt(keyBriefCap, rc.BriefCap)
	rc.DetailBodyBytes = s.getInt(keyDetailBodyBytes, rc.DetailBodyBytes)
	rc.BriefBodyBytes = s.getInt(keyBriefBodyBytes, rc.BriefBodyBytes)
	rc.HistoryCount = s.getInt(keyHistoryCount, rc.HistoryCount)
	rc.MaxChunkBytes = s.getInt(keyMaxChunkBytes, rc.MaxChunkBytes)
	rc.ArtifactDir = s.path(keyOutputDir, "briefs")
	rc.MirrorDir = s.path(keyOutputMirror, "")
	rc.ContextDir = s.path(keyContextDir, "context")
	rc.WebBaseURL = s.configStore.GetString(keyOutputWeb)

	if rc.WindowDays <= 0 || rc.LookbackDays < rc.WindowDays {
		return nil, fmt.Errorf("window.days must be positive and not exceed window.lookback_days: %w",
			domain.ErrInvalidInput)
	}

	provider := s.getProvider(keyLLMProvider, domain.AIProviderAnthropic)

	settings := &domain.Settings{
		Gmail: domain.GmailSettings{
			Query:           s.getString(keyGmailQuery, DefaultQuery),
			ContextQuery:    s.configStore.GetString(keyGmailContextQuery),
			PageSize:        int64(s.getInt(keyGmailPageSize, DefaultPageSize)),
			CredentialsFile: s.path(keyGmailCredentials, "credentials.json"),
			TokenFile:       s.path(keyGmailToken, "token.json"),
		},
		LLM: domain.LLMSettings{
			Provider:  provider,
			Model:     s.configStore.GetString(keyLLMModel),
			RankModel: s.configStore.GetString(keyLLMRankModel),
			APIKey:    s.getenv(provider.APIKeyEnv()),
		},
		Slack: domain.SlackSettings{
			Token:   s.getenv(EnvSlackToken),
			Channel: s.slackChannel(),
		},
		Run: rc,
	}
	sched := s.SchedulerConfig()
	settings.ScheduleIntervalHours = int(sched.GetTaskConfig(domain.TaskIDWeeklyBrief).Interval.Hours())
	return settings, nil
}

// DeliveryPipeline returns the delivery processor names and their configs.
// The chunker ceiling follows delivery.max_chunk_bytes. A configured list
// that does not end with the chunker is rejected.
func (s *SettingsService) DeliveryPipeline() ([]string, map[string]map[string]any, error) {
	names := s.configStore.GetStringSlice(keyDeliveryProcessors)
	if len(names) == 0 {
		names = append([]string(nil), DefaultDeliveryProcessors...)
	}
	if err := ValidateDeliveryProcessors(names); err != nil {
		return nil, nil, err
	}
	cfg := map[string]map[string]any{}
	if n := s.configStore.GetInt(keyMaxChunkBytes); n > 0 {
		cfg[ChunkerProcessor] = map[string]any{"max_bytes": n}
	}
	return names, cfg, nil
}

// ValidateDeliveryProcessors checks that names ends with the chunker.
// Anything after it could grow chunks past the ceiling; without it nothing
// is split at all.
func ValidateDeliveryProcessors(names []string) error {
	if len(names) == 0 || names[len(names)-1] != ChunkerProcessor {
		return fmt.Errorf("%s must end with %q, got [%s]: %w",
			keyDeliveryProcessors, ChunkerProcessor, strings.Join(names, ", "), domain.ErrInvalidInput)
	}
	return nil
}

// SchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) SchedulerConfig() domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		cfg.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	task := cfg.TaskConfigs[domain.TaskIDWeeklyBrief]
	if _, exists := s.configStore.Get(keyScheduleTaskEnabled); exists {
		task.Enabled = s.configStore.GetBool(keyScheduleTaskEnabled)
	}
	if interval := s.configStore.GetString(keyScheduleInterval); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil && d > 0 {
			task.Interval = d
		}
	}
	cfg.TaskConfigs[domain.TaskIDWeeklyBrief] = task

	return cfg
}

// Set parses raw according to the key's type and persists it.
func (s *SettingsService) Set(key, raw string) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	var value any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s expects an integer: %w", key, domain.ErrInvalidInput)
		}
		value = n
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s expects true or false: %w", key, domain.ErrInvalidInput)
		}
		value = b
	case kindDuration:
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s expects a duration like 168h: %w", key, domain.ErrInvalidInput)
		}
		value = raw
	case kindList:
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if key == keyDeliveryProcessors {
			if err := ValidateDeliveryProcessors(items); err != nil {
				return err
			}
		}
		value = items
	default:
		value = raw
	}

	switch key {
	case keyLLMProvider:
		if !domain.AIProvider(raw).IsValid() {
			return fmt.Errorf("unsupported LLM provider %q: %w", raw, domain.ErrInvalidInput)
		}
	case keyWindowTimezone:
		if _, err := time.LoadLocation(raw); err != nil {
			return fmt.Errorf("unknown time zone %q: %w", raw, domain.ErrInvalidInput)
		}
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists every setting Set accepts, sorted.
func (s *SettingsService) Keys() []string {
	return KnownKeys()
}

// KnownKeys lists every setting Set accepts, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// slackChannel prefers SLACK_CHANNEL over the config file.
func (s *SettingsService) slackChannel() string {
	if ch := s.getenv(EnvSlackChannel); ch != "" {
		return ch
	}
	return s.getString(keySlackChannel, DefaultSlackChannel)
}

// path resolves a configured path against baseDir. An empty def means unset.
func (s *SettingsService) path(key, def string) string {
	p := s.configStore.GetString(key)
	if p == "" {
		p = def
	}
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if filepath.IsAbs(p) || s.baseDir == "" {
		return p
	}
	return filepath.Join(s.baseDir, p)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
