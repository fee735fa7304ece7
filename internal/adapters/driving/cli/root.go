// Package cli provides the pulse-brief command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pulse-brief/internal/core/ports/driving"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// skipBootstrap marks commands that run without configured services.
const skipBootstrap = "skip-bootstrap"

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	// ConfigDir overrides the default ~/.pulse-brief directory.
	ConfigDir string

	// Verbose enables debug logging.
	Verbose bool
}

// PromptWatcher reloads prompt templates while the daemon runs.
type PromptWatcher interface {
	Watch(ctx context.Context) error
}

// Authoriser runs an interactive consent flow for the message store.
type Authoriser interface {
	Authorise(ctx context.Context, out io.Writer) error
}

// Services is everything the commands drive.
type Services struct {
	Brief     driving.BriefRunner
	Scheduler driving.Scheduler
	Inspector driving.ScheduleInspector
	Settings  driving.SettingsService

	// Watcher is optional.
	Watcher PromptWatcher

	// Gmail authorises mailbox access.
	Gmail Authoriser

	// SetupErr explains why Brief or Scheduler could not be built.
	SetupErr error

	// Close releases resources opened by the bootstrap. Optional.
	Close func() error
}

// Bootstrap builds services once flags are parsed.
type Bootstrap func(opts GlobalOptions) (*Services, error)

var (
	globalOpts GlobalOptions
	bootstrap  Bootstrap

	briefRunner       driving.BriefRunner
	scheduler         driving.Scheduler
	scheduleInspector driving.ScheduleInspector
	settingsService   driving.SettingsService
	promptWatcher     PromptWatcher
	gmailAuthoriser   Authoriser
	setupErr          error
	closeServices     func() error
)

var rootCmd = &cobra.Command{
	Use:   "pulse-brief",
	Short: "Weekly AI newsletter digest for your team",
	Long: `pulse-brief reads AI newsletters from a Gmail label, ranks them against
your team's context with an LLM, writes a weekly brief and posts it to Slack
as a threaded message.

Run once with 'pulse-brief run', or leave 'pulse-brief schedule start'
running to produce the brief on a fixed interval.`,
	SilenceUsage:       true,
	PersistentPreRunE:  persistentPreRun,
	PersistentPostRunE: persistentPostRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigDir, "config-dir", "",
		"configuration directory (default ~/.pulse-brief)")
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.Verbose, "verbose", "v", false,
		"enable debug logging")
}

// SetBootstrap registers the function that builds services for each command.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by 'pulse-brief version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every command.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setServices installs services directly. A nil argument clears them.
func setServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	briefRunner = s.Brief
	scheduler = s.Scheduler
	scheduleInspector = s.Inspector
	settingsService = s.Settings
	promptWatcher = s.Watcher
	gmailAuthoriser = s.Gmail
	setupErr = s.SetupErr
	closeServices = s.Close
}

func persistentPreRun(cmd *cobra.Command, _ []string) error {
	if globalOpts.Verbose {
		logger.SetVerbose(true)
	} else if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logger.SetLevel(lvl)
	}

	if bootstrap == nil || cmd.Annotations[skipBootstrap] == "true" {
		return nil
	}

	s, err := bootstrap(globalOpts)
	if err != nil {
		return err
	}
	setServices(s)
	return nil
}

func persistentPostRun(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// errNotConfigured names a service missing from the bootstrap,
// with the setup error when there is one.
func errNotConfigured(name string) error {
	if setupErr != nil {
		return fmt.Errorf("%s not configured: %w", name, setupErr)
	}
	return errors.New(name + " not configured")
}
