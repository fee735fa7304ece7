package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/logger"
)

const timeLayout = "Mon 02 Jan 15:04 MST"

var historyLimit int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run and inspect the weekly schedule",
}

var scheduleStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the scheduler in the foreground",
	Long: `Runs the weekly brief whenever it is due, until interrupted.
Prompt templates are reloaded when their files change.`,
	Args: cobra.NoArgs,
	RunE: runScheduleStart,
}

var scheduleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scheduled tasks",
	Args:  cobra.NoArgs,
	RunE:  runScheduleStatus,
}

var scheduleHistoryCmd = &cobra.Command{
	Use:   "history [task-id]",
	Short: "Show recent runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScheduleHistory,
}

var scheduleResetCmd = &cobra.Command{
	Use:   "reset [task-id]",
	Short: "Forget a task's schedule so the next start runs it immediately",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScheduleReset,
}

func init() {
	scheduleHistoryCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show")
	scheduleCmd.AddCommand(scheduleStartCmd)
	scheduleCmd.AddCommand(scheduleStatusCmd)
	scheduleCmd.AddCommand(scheduleHistoryCmd)
	scheduleCmd.AddCommand(scheduleResetCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleStart(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errNotConfigured("scheduler")
	}
	ctx := cmd.Context()

	if promptWatcher != nil {
		go func() {
			if err := promptWatcher.Watch(ctx); err != nil && !errors.Is(err, ctx.Err()) {
				logger.Warn("prompt watcher stopped: %v", err)
			}
		}()
	}

	cmd.Println(titleStyle.Render("Scheduler running") + mutedStyle.Render(" (Ctrl+C to stop)"))
	err := scheduler.Start(ctx)
	_ = scheduler.Stop()
	if err != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("scheduler: %w", err)
	}
	cmd.Println("Scheduler stopped.")
	return nil
}

func runScheduleStatus(cmd *cobra.Command, _ []string) error {
	if scheduleInspector == nil {
		return errNotConfigured("scheduler")
	}

	tasks, err := scheduleInspector.Tasks(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	if len(tasks) == 0 {
		cmd.Println("No scheduled tasks. Run 'pulse-brief schedule start' to create them.")
		return nil
	}

	for i, t := range tasks {
		if i > 0 {
			cmd.Println()
		}
		cmd.Println(titleStyle.Render(t.Name) + mutedStyle.Render(" ["+t.ID+"]"))
		cmd.Println(field("Enabled", status(t.Enabled, "yes", "no")))
		cmd.Println(field("Interval", t.Interval.String()))
		cmd.Println(field("Last run", formatTime(t.LastRun)))
		cmd.Println(field("Last success", formatTime(t.LastSuccess)))
		cmd.Println(field("Next run", formatTime(t.NextRun)))
		if t.LastError != "" {
			cmd.Println(field("Last error", errorStyle.Render(t.LastError)))
		}
	}
	return nil
}

func runScheduleHistory(cmd *cobra.Command, args []string) error {
	if scheduleInspector == nil {
		return errNotConfigured("scheduler")
	}

	results, err := scheduleInspector.History(cmd.Context(), taskArg(args), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for _, r := range results {
		line := fmt.Sprintf("%s  %s  %3d docs  %s",
			r.StartedAt.Local().Format(timeLayout),
			status(r.Success, "ok  ", "fail"),
			r.ItemsProcessed,
			mutedStyle.Render(r.Duration().Round(time.Second).String()))
		if r.Error != "" {
			line += "  " + errorStyle.Render(r.Error)
		}
		cmd.Println(line)
	}
	return nil
}

func runScheduleReset(cmd *cobra.Command, args []string) error {
	if scheduleInspector == nil {
		return errNotConfigured("scheduler")
	}

	id := taskArg(args)
	if err := scheduleInspector.Reset(cmd.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no scheduled task %q", id)
		}
		return fmt.Errorf("failed to reset %s: %w", id, err)
	}
	cmd.Printf("Task %s reset.\n", id)
	return nil
}

func taskArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return domain.TaskIDWeeklyBrief
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return mutedStyle.Render("never")
	}
	return t.Local().Format(timeLayout)
}
