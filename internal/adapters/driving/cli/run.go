package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pulse-brief/internal/core/domain"
	"github.com/custodia-labs/pulse-brief/internal/core/services"
)

var runOpts domain.RunOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Produce this week's brief",
	Long: `Runs the whole pipeline once: ingest newsletters for the current window,
rank them against team context, generate the brief, store it and post it
to Slack.

--dry-run stops after ranking and prints the selection.
--no-post stores the brief without posting it.`,
	Args: cobra.NoArgs,
	RunE: runBrief,
}

func init() {
	runCmd.Flags().BoolVar(&runOpts.DryRun, "dry-run", false, "rank and select only; nothing is generated or posted")
	runCmd.Flags().BoolVar(&runOpts.NoPost, "no-post", false, "store the brief without posting it")
	rootCmd.AddCommand(runCmd)
}

func runBrief(cmd *cobra.Command, _ []string) error {
	if briefRunner == nil {
		return errNotConfigured("brief service")
	}

	report, err := briefRunner.Run(cmd.Context(), runOpts)
	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, r *domain.RunReport) {
	cmd.Println(titleStyle.Render("Weekly brief " + r.Window.Label))
	cmd.Println(field("Run", mutedStyle.Render(r.RunID)))
	cmd.Println(field("Listed", fmt.Sprintf("%d (%d fetched, %d failed, %d skipped)",
		r.Stats.Listed, r.Stats.Fetched, r.Stats.FetchErrors, r.Stats.Skipped)))
	cmd.Println(field("In window", fmt.Sprintf("%d of %d unique", r.Stats.InWindow, r.Stats.Unique)))

	if sel := r.Selection; sel != nil {
		mode := "single pass"
		if sel.TwoStage {
			mode = "two-stage"
		}
		if sel.Assignment.Fallback {
			mode += warningStyle.Render(" (positional fallback)")
		}
		cmd.Println(field("Ranking", mode))
		cmd.Println(field("Selected", fmt.Sprintf("%d detailed, %d brief, %d dropped",
			len(sel.Detailed), len(sel.Brief), sel.Dropped)))
		if runOpts.DryRun {
			printSelection(cmd, sel)
		}
	}

	if r.Brief != nil {
		cmd.Println(field("Saved", r.Brief.Path))
	}
	if d := r.Delivery; d != nil {
		cmd.Println(field("Delivery", deliveryLine(d)))
	}
	if elapsed := services.Elapsed(r); elapsed > 0 {
		cmd.Println(field("Elapsed", elapsed.Round(time.Millisecond).String()))
	}
}

func printSelection(cmd *cobra.Command, sel *domain.Selection) {
	if len(sel.Detailed) > 0 {
		printTier(cmd, domain.TierHigh)
		for _, d := range sel.Detailed {
			cmd.Printf("  • %s %s\n", d.Title, mutedStyle.Render("("+d.Source+", "+d.Date+")"))
		}
	}
	if len(sel.Brief) > 0 {
		printTier(cmd, domain.TierMedium)
		for _, d := range sel.Brief {
			cmd.Printf("  • %s %s\n", d.Title, mutedStyle.Render("("+d.Source+", "+d.Date+")"))
		}
	}
}

func printTier(cmd *cobra.Command, t domain.Tier) {
	name := t.String()
	cmd.Println()
	cmd.Println(titleStyle.Render(strings.ToUpper(name[:1]) + name[1:] + " priority"))
}

func deliveryLine(d *domain.DeliveryOutcome) string {
	if d.AlreadyDelivered {
		return mutedStyle.Render("already delivered, skipped")
	}
	parts := []string{status(d.State == domain.StateComplete, "complete", strings.ToLower(string(d.State)))}
	parts = append(parts, fmt.Sprintf("%d replies", d.Replies))
	if d.ThreadID != "" {
		parts = append(parts, "thread "+d.ThreadID)
	}
	return strings.Join(parts, ", ")
}
