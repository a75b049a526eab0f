package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"talentreach/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "View and update configuration settings",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}
		cfg := a.Config

		cmd.Println(titleStyle.Render("Configuration"))
		cmd.Printf("%s %s\n", labelStyle.Render("Config File:"), config.GetConfigPath())

		// Credentials are reported as configured or not, never printed.
		if cfg.SMSConfigured() {
			cmd.Printf("%s %s\n", labelStyle.Render("Twilio:"), "✓ Configured")
		} else {
			cmd.Printf("%s %s\n", labelStyle.Render("Twilio:"), "✗ Not configured")
		}
		if cfg.EmailConfigured() {
			cmd.Printf("%s %s\n", labelStyle.Render("SMTP:"), "✓ Configured")
		} else {
			cmd.Printf("%s %s\n", labelStyle.Render("SMTP:"), "✗ Not configured")
		}

		cmd.Printf("%s %s\n", labelStyle.Render("Recruiter:"), cfg.RecruiterName)
		cmd.Printf("%s %s\n", labelStyle.Render("Company:"), cfg.CompanyName)
		cmd.Printf("%s %s\n", labelStyle.Render("Role Title:"), cfg.RoleTitle)
		cmd.Printf("%s %ds delivery / %ds replies\n", labelStyle.Render("Poll intervals:"),
			cfg.DeliveryPollSeconds, cfg.ReplyPollSeconds)
		return nil
	},
}

var setConfigCmd = &cobra.Command{
	Use:   "set",
	Short: "Update a configuration value",
	Example: `  talentreach config set --key twilio_account_sid --value AC...
  talentreach config set --key smtp_host --value smtp.example.com
  talentreach config set --key recruiter_name --value "Sam Porter"`,
	Run: func(cmd *cobra.Command, args []string) {
		key, _ := cmd.Flags().GetString("key")
		value, _ := cmd.Flags().GetString("value")

		if key == "" || value == "" {
			fmt.Println("Both --key and --value are required")
			return
		}

		validKeys := []string{
			"twilio_account_sid", "twilio_auth_token", "twilio_from_number",
			"smtp_host", "smtp_port", "smtp_user", "smtp_password", "smtp_from",
			"recruiter_name", "recruiter_email", "recruiter_phone",
			"company_name", "role_title",
			"delivery_poll_seconds", "reply_poll_seconds",
		}
		valid := false
		for _, k := range validKeys {
			if k == key {
				valid = true
				break
			}
		}
		if !valid {
			fmt.Printf("Invalid key. Must be one of: %v\n", validKeys)
			return
		}

		if err := config.Set(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "Error updating config: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("✓ Configuration updated: %s\n", key)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)

	setConfigCmd.Flags().String("key", "", "Configuration key")
	setConfigCmd.Flags().String("value", "", "Configuration value")
}
