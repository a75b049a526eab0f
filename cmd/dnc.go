package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"talentreach/pkg/models"
)

var dncCmd = &cobra.Command{
	Use:   "dnc",
	Short: "Manage the do-not-contact list",
	Long: `The do-not-contact list blocks outbound messages to a phone number or
email address. It is checked before every send.`,
}

// parseDNCType validates the type argument shared by the dnc subcommands.
func parseDNCType(s string) (models.DNCType, error) {
	switch s {
	case "phone":
		return models.DNCPhone, nil
	case "email":
		return models.DNCEmail, nil
	default:
		return "", fmt.Errorf("type must be 'phone' or 'email', got %q", s)
	}
}

var addDNCCmd = &cobra.Command{
	Use:   "add <phone|email> <value>",
	Short: "Add an address to the do-not-contact list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		t, err := parseDNCType(args[0])
		if err != nil {
			return err
		}

		reason := models.DNCManual
		switch r, _ := cmd.Flags().GetString("reason"); r {
		case "opt_out":
			reason = models.DNCOptOut
		case "bounce":
			reason = models.DNCBounce
		case "manual", "":
		default:
			return fmt.Errorf("reason must be opt_out, bounce, or manual")
		}

		if _, err := a.Registry.Add(t, args[1], reason); err != nil {
			return fmt.Errorf("add entry: %w", err)
		}
		cmd.Printf("✓ %s added to the do-not-contact list\n", args[1])
		return nil
	},
}

var removeDNCCmd = &cobra.Command{
	Use:   "remove <phone|email> <value>",
	Short: "Remove an address from the do-not-contact list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		t, err := parseDNCType(args[0])
		if err != nil {
			return err
		}

		removed, err := a.Registry.Remove(t, args[1])
		if err != nil {
			return fmt.Errorf("remove entry: %w", err)
		}
		if !removed {
			cmd.Printf("%s was not on the do-not-contact list\n", args[1])
			return nil
		}
		cmd.Printf("✓ %s removed from the do-not-contact list\n", args[1])
		return nil
	},
}

var checkDNCCmd = &cobra.Command{
	Use:   "check <phone|email> <value>",
	Short: "Check whether an address is blocked",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		t, err := parseDNCType(args[0])
		if err != nil {
			return err
		}

		blocked, err := a.Registry.Check(t, args[1])
		if err != nil {
			return err
		}
		if blocked {
			cmd.Printf("%s is BLOCKED\n", args[1])
		} else {
			cmd.Printf("%s is not on the list\n", args[1])
		}
		return nil
	},
}

var listDNCCmd = &cobra.Command{
	Use:   "list",
	Short: "List all do-not-contact entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		entries, err := a.Registry.List()
		if err != nil {
			return fmt.Errorf("fetch entries: %w", err)
		}
		if len(entries) == 0 {
			cmd.Println("The do-not-contact list is empty.")
			return nil
		}

		cmd.Println(titleStyle.Render("Do-Not-Contact List"))
		for _, e := range entries {
			cmd.Printf("%s %s  %s\n",
				labelStyle.Render(fmt.Sprintf("[%s]", e.Type)),
				e.Value,
				valueStyle.Render(fmt.Sprintf("(%s, %s)", e.Reason, e.CreatedAt.Format("Jan 2, 2006"))))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dncCmd)
	dncCmd.AddCommand(addDNCCmd)
	dncCmd.AddCommand(removeDNCCmd)
	dncCmd.AddCommand(checkDNCCmd)
	dncCmd.AddCommand(listDNCCmd)

	addDNCCmd.Flags().String("reason", "manual", "Reason: opt_out, bounce, or manual")
}
