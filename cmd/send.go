package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"talentreach/internal/outreach"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send outreach messages",
	Long:  "Send SMS or email messages to pipeline candidates",
}

var sendSMSCmd = &cobra.Command{
	Use:   "sms <project-id> <cv-id>",
	Short: "Send an SMS to a candidate",
	Example: `  talentreach send sms proj-1 cv-42 --body "Hi {{candidate_first_name}}!"
  talentreach send sms proj-1 cv-42 --template tmpl-7`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		body, _ := cmd.Flags().GetString("body")
		templateID, _ := cmd.Flags().GetString("template")
		to, _ := cmd.Flags().GetString("to")
		if body == "" && templateID == "" {
			return fmt.Errorf("either --body or --template is required")
		}

		msg, err := a.SendSMS(cmd.Context(), args[0], args[1], to, body, templateID)
		if err != nil {
			return sendError(cmd, err)
		}

		cmd.Printf("✓ SMS sent to %s (%d segment(s), message ID: %s)\n",
			msg.ToAddress, outreach.Segments(msg.Body), msg.ID)
		return nil
	},
}

var sendEmailCmd = &cobra.Command{
	Use:   "email <project-id> <cv-id>",
	Short: "Send an email to a candidate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		subject, _ := cmd.Flags().GetString("subject")
		body, _ := cmd.Flags().GetString("body")
		templateID, _ := cmd.Flags().GetString("template")
		to, _ := cmd.Flags().GetString("to")
		if body == "" && templateID == "" {
			return fmt.Errorf("either --body or --template is required")
		}

		msg, err := a.SendEmail(cmd.Context(), args[0], args[1], to, subject, body, templateID)
		if err != nil {
			return sendError(cmd, err)
		}

		cmd.Printf("✓ Email sent to %s (message ID: %s)\n", msg.ToAddress, msg.ID)
		return nil
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages <cv-id>",
	Short: "Show the message history for a candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		msgs, err := a.Store.ListMessagesByCV(args[0])
		if err != nil {
			return fmt.Errorf("fetch messages: %w", err)
		}
		if len(msgs) == 0 {
			cmd.Println("No messages for this candidate.")
			return nil
		}

		cmd.Println(titleStyle.Render("Message History"))
		for _, m := range msgs {
			arrow := "→"
			if m.Direction == "inbound" {
				arrow = "←"
			}
			cmd.Printf("\n%s %s %s  %s\n",
				labelStyle.Render(m.CreatedAt.Format("Jan 2 15:04")),
				arrow,
				m.ToAddress,
				valueStyle.Render(fmt.Sprintf("[%s/%s]", m.Type, m.Status)))
			if m.Subject != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Subject:"), m.Subject)
			}
			cmd.Printf("   %s\n", m.Body)
			if m.ErrorMessage != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Error:"), m.ErrorMessage)
			}
		}
		return nil
	},
}

// sendError maps dispatch failures to friendlier command output.
func sendError(cmd *cobra.Command, err error) error {
	switch {
	case errors.Is(err, outreach.ErrDoNotContact):
		return fmt.Errorf("recipient is on the do-not-contact list; no message was sent")
	case errors.Is(err, outreach.ErrNotConfigured):
		return fmt.Errorf("provider not configured; run 'talentreach config set' first")
	default:
		return err
	}
}

func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(messagesCmd)
	sendCmd.AddCommand(sendSMSCmd)
	sendCmd.AddCommand(sendEmailCmd)

	sendSMSCmd.Flags().String("body", "", "Message body (supports {{variables}})")
	sendSMSCmd.Flags().String("template", "", "Template id")
	sendSMSCmd.Flags().String("to", "", "Override recipient phone")
	sendEmailCmd.Flags().String("subject", "", "Email subject")
	sendEmailCmd.Flags().String("body", "", "Message body (supports {{variables}})")
	sendEmailCmd.Flags().String("template", "", "Template id")
	sendEmailCmd.Flags().String("to", "", "Override recipient email")
}
