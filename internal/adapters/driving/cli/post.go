package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post <artifact-id>",
	Short: "Post a stored brief to Slack",
	Long: `Posts a previously generated brief, identified by its date (YYYY-MM-DD),
as a threaded Slack message. A brief that was already delivered is skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runPost,
}

func init() {
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	if briefRunner == nil {
		return errNotConfigured("brief service")
	}

	outcome, err := briefRunner.Post(cmd.Context(), args[0])
	if outcome != nil {
		cmd.Println(field("Delivery", deliveryLine(outcome)))
	}
	if err != nil {
		return fmt.Errorf("post failed: %w", err)
	}
	return nil
}
