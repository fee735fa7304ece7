package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:     "settings",
	Aliases: []string{"config"},
	Short:   "Manage application settings",
	Long: `View and change settings stored in config.toml.

Secrets are never stored: the LLM API key comes from ANTHROPIC_API_KEY or
OPENAI_API_KEY, and the Slack bot token from SLACK_BOT_TOKEN.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a single setting by its dotted key, for example:

  pulse-brief settings set window.timezone Europe/London
  pulse-brief settings set delivery.processors mrkdwn,chunker

Run 'pulse-brief settings keys' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Choose the LLM provider and models",
	Args:  cobra.NoArgs,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(titleStyle.Render("[Gmail]"))
	cmd.Println(field("Query", s.Gmail.Query))
	if s.Gmail.ContextQuery != "" {
		cmd.Println(field("Context query", s.Gmail.ContextQuery))
	}
	cmd.Println(field("Credentials", s.Gmail.CredentialsFile))
	cmd.Println(field("Token", s.Gmail.TokenFile))
	cmd.Println()

	cmd.Println(titleStyle.Render("[LLM]"))
	cmd.Println(field("Provider", s.LLM.Provider.Description()))
	cmd.Println(field("Model", orDefault(s.LLM.Model)))
	cmd.Println(field("Rank model", orDefault(s.LLM.RankModel)))
	cmd.Println(field("API key", secret(s.LLM.APIKey, s.LLM.Provider.APIKeyEnv())))
	cmd.Println()

	cmd.Println(titleStyle.Render("[Slack]"))
	cmd.Println(field("Channel", s.Slack.Channel))
	cmd.Println(field("Bot token", secret(s.Slack.Token, "SLACK_BOT_TOKEN")))
	cmd.Println()

	rc := s.Run
	cmd.Println(titleStyle.Render("[Window]"))
	cmd.Println(field("Time zone", rc.Location.String()))
	cmd.Println(field("Days", strconv.Itoa(rc.WindowDays)))
	cmd.Println(field("Lookback", strconv.Itoa(rc.LookbackDays)))
	cmd.Println()

	cmd.Println(titleStyle.Render("[Output]"))
	cmd.Println(field("Briefs", rc.ArtifactDir))
	if rc.MirrorDir != "" {
		cmd.Println(field("Mirror", rc.MirrorDir))
	}
	cmd.Println(field("Context", rc.ContextDir))
	cmd.Println()

	cmd.Println(titleStyle.Render("[Schedule]"))
	cmd.Println(field("Interval", fmt.Sprintf("every %dh", s.ScheduleIntervalHours)))
	cmd.Println()

	switch {
	case !s.LLM.IsConfigured():
		cmd.Println(warningStyle.Render("Warning: LLM API key not set; runs will fail."))
	case !s.Slack.IsConfigured():
		cmd.Println(warningStyle.Render("Warning: Slack not configured; briefs will be stored but not posted."))
	default:
		cmd.Println(successStyle.Render("Configuration is valid."))
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings service")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	cmd.Print("Generation model [provider default]: ")
	model := readLine(reader)
	cmd.Print("Ranking model [same as generation]: ")
	rankModel := readLine(reader)

	for _, kv := range [][2]string{
		{"llm.provider", selected.String()},
		{"llm.model", model},
		{"llm.rank_model", rankModel},
	} {
		if err := settingsService.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to configure LLM provider: %w", err)
		}
	}

	cmd.Printf("LLM provider configured: %s\n", selected.Description())
	if env := selected.APIKeyEnv(); env != "" {
		cmd.Println(mutedStyle.Render("Set " + env + " in your environment or .env file."))
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func secret(value, env string) string {
	if value == "" {
		return warningStyle.Render("(not set, export " + env + ")")
	}
	return maskAPIKey(value)
}

func orDefault(s string) string {
	if s == "" {
		return mutedStyle.Render("(default)")
	}
	return s
}
