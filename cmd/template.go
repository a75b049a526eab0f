package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"talentreach/internal/template"
	"talentreach/pkg/models"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage message templates",
	Long: `Message templates hold reusable SMS and email bodies with {{variable}}
placeholders. Run 'talentreach template vars' to see the available
variables.`,
}

var addTemplateCmd = &cobra.Command{
	Use:   "add <project-id>",
	Short: "Add a message template",
	Example: `  talentreach template add proj-1 --name "Intro SMS" --type sms \
    --body "Hi {{candidate_first_name}}, {{recruiter_name}} here about the {{role_title}} role." \
    --default`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		msgType, _ := cmd.Flags().GetString("type")
		subject, _ := cmd.Flags().GetString("subject")
		body, _ := cmd.Flags().GetString("body")
		isDefault, _ := cmd.Flags().GetBool("default")

		t := &models.MessageTemplate{
			ProjectID: args[0],
			Name:      name,
			Type:      models.MessageType(msgType),
			Subject:   subject,
			Body:      body,
			IsDefault: isDefault,
		}
		if err := a.SaveTemplate(t); err != nil {
			return err
		}

		cmd.Printf("✓ Template added: %s (ID: %s)\n", t.Name, t.ID)
		return nil
	},
}

var listTemplateCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's templates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		templates, err := a.Store.ListTemplatesByProject(args[0])
		if err != nil {
			return fmt.Errorf("fetch templates: %w", err)
		}
		if len(templates) == 0 {
			cmd.Println("No templates in this project. Add one with 'talentreach template add'")
			return nil
		}

		cmd.Println(titleStyle.Render("Message Templates"))
		for i, t := range templates {
			marker := ""
			if t.IsDefault {
				marker = " (default)"
			}
			cmd.Printf("\n%s. %s [%s]%s\n",
				labelStyle.Render(fmt.Sprintf("%d", i+1)), t.Name, t.Type, marker)
			cmd.Printf("   %s %s\n", labelStyle.Render("ID:"), t.ID)
			if t.Subject != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Subject:"), t.Subject)
			}
			cmd.Printf("   %s\n", valueStyle.Render(t.Body))
		}
		return nil
	},
}

var previewTemplateCmd = &cobra.Command{
	Use:   "preview <template-id>",
	Short: "Preview a template with example data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		t, err := a.Store.GetTemplate(args[0])
		if err != nil {
			return fmt.Errorf("fetch template: %w", err)
		}

		cmd.Println(titleStyle.Render(fmt.Sprintf("Preview: %s", t.Name)))
		if t.Subject != "" {
			cmd.Printf("%s %s\n\n", labelStyle.Render("Subject:"), template.Preview(t.Subject))
		}
		cmd.Println(template.Preview(t.Body))
		return nil
	},
}

var deleteTemplateCmd = &cobra.Command{
	Use:   "delete <template-id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		if err := a.Store.DeleteTemplate(args[0]); err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		cmd.Println("✓ Template deleted")
		return nil
	},
}

var varsTemplateCmd = &cobra.Command{
	Use:   "vars",
	Short: "List the available template variables",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(titleStyle.Render("Template Variables"))
		for _, v := range template.AvailableVariables() {
			cmd.Printf("%s %s — %s (e.g. %s)\n",
				labelStyle.Render(fmt.Sprintf("{{%s}}", v.Key)),
				v.Label,
				v.Category,
				valueStyle.Render(v.Example))
		}
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.AddCommand(addTemplateCmd)
	templateCmd.AddCommand(listTemplateCmd)
	templateCmd.AddCommand(previewTemplateCmd)
	templateCmd.AddCommand(deleteTemplateCmd)
	templateCmd.AddCommand(varsTemplateCmd)

	addTemplateCmd.Flags().String("name", "", "Template name")
	addTemplateCmd.Flags().String("type", "sms", "Template type: sms or email")
	addTemplateCmd.Flags().String("subject", "", "Email subject")
	addTemplateCmd.Flags().String("body", "", "Template body")
	addTemplateCmd.Flags().Bool("default", false, "Mark as the project default for this type")
}
