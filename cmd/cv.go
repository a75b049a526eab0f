package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talentreach/pkg/models"
)

var cvCmd = &cobra.Command{
	Use:   "cv",
	Short: "Manage candidate CVs",
	Long:  "Add, list, and view candidate CVs used for matching",
}

var addCVCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a candidate CV",
	Example: `  talentreach cv add --name "Jane Smith" --email jane@example.com \
    --phone "+15550100" --skills "Go,React,PostgreSQL"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		phone, _ := cmd.Flags().GetString("phone")
		skillsCSV, _ := cmd.Flags().GetString("skills")

		if name == "" {
			return fmt.Errorf("--name is required")
		}

		var skills []string
		for _, part := range strings.Split(skillsCSV, ",") {
			if s := strings.TrimSpace(part); s != "" {
				skills = append(skills, s)
			}
		}
		if len(skills) == 0 {
			return fmt.Errorf("--skills is required")
		}

		cv := &models.CandidateCV{
			Name:   name,
			Email:  email,
			Phone:  phone,
			Skills: skills,
		}
		if err := a.Store.CreateCV(cv); err != nil {
			return fmt.Errorf("save cv: %w", err)
		}

		cmd.Printf("✓ CV added: %s (ID: %s)\n", cv.Name, cv.ID)
		return nil
	},
}

var listCVCmd = &cobra.Command{
	Use:   "list",
	Short: "List all candidate CVs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		cvs, err := a.Store.ListCVs()
		if err != nil {
			return fmt.Errorf("fetch cvs: %w", err)
		}
		if len(cvs) == 0 {
			cmd.Println("No CVs found. Add one with 'talentreach cv add'")
			return nil
		}

		cmd.Println(titleStyle.Render("Candidate CVs"))
		for i, cv := range cvs {
			cmd.Printf("\n%s. %s\n", labelStyle.Render(fmt.Sprintf("%d", i+1)), cv.Name)
			cmd.Printf("   %s %s\n", labelStyle.Render("ID:"), cv.ID)
			if cv.Email != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Email:"), cv.Email)
			}
			if cv.Phone != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Phone:"), cv.Phone)
			}
			cmd.Printf("   %s %s\n", labelStyle.Render("Skills:"), strings.Join(cv.Skills, ", "))
		}
		return nil
	},
}

var showCVCmd = &cobra.Command{
	Use:   "show <cv-id>",
	Short: "Show a candidate CV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		cv, err := a.Store.GetCV(args[0])
		if err != nil {
			return fmt.Errorf("fetch cv: %w", err)
		}

		cmd.Println(titleStyle.Render(cv.Name))
		if cv.Email != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Email:"), valueStyle.Render(cv.Email))
		}
		if cv.Phone != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Phone:"), valueStyle.Render(cv.Phone))
		}
		cmd.Printf("%s %s\n", labelStyle.Render("Added:"), cv.CreatedAt.Format("Jan 2, 2006"))
		cmd.Println(labelStyle.Render("\nSkills:"))
		for _, s := range cv.Skills {
			cmd.Printf("  • %s\n", s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cvCmd)
	cvCmd.AddCommand(addCVCmd)
	cvCmd.AddCommand(listCVCmd)
	cvCmd.AddCommand(showCVCmd)

	addCVCmd.Flags().String("name", "", "Candidate name")
	addCVCmd.Flags().String("email", "", "Candidate email")
	addCVCmd.Flags().String("phone", "", "Candidate phone")
	addCVCmd.Flags().String("skills", "", "Comma-separated skills")
}
