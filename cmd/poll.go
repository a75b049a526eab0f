package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var pollCmd = &cobra.Command{
	Use:   "poll <project-id>",
	Short: "Run the delivery and reply pollers for a project",
	Long: `Run the background pollers for a project until interrupted. The delivery
poller reconciles provider delivery status for outbound messages; the reply
poller fetches inbound SMS replies, records them, and applies opt-outs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		if a.DeliveryPoller == nil {
			return fmt.Errorf("SMS provider not configured; run 'talentreach config set' first")
		}

		projectID := args[0]
		a.DeliveryPoller.Start(cmd.Context(), projectID)
		a.ReplyPoller.Start(cmd.Context(), projectID)

		cmd.Printf("Polling project %s (delivery every %s, replies every %s). Ctrl-C to stop.\n",
			projectID, a.Config.DeliveryPollInterval(), a.Config.ReplyPollInterval())

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sig:
		case <-cmd.Context().Done():
		}

		a.DeliveryPoller.Stop(projectID)
		a.ReplyPoller.Stop(projectID)
		cmd.Println("\nPollers stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pollCmd)
}
