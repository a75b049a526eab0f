package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"talentreach/pkg/models"
)

var jdCmd = &cobra.Command{
	Use:   "jd",
	Short: "Manage job descriptions",
	Long:  "Add, list, and view job descriptions used for candidate matching",
}

var addJDCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job description",
	Example: `  talentreach jd add --title "Backend Engineer" --company "Acme" \
    --required "Go,PostgreSQL,Docker" --preferred "Kubernetes,AWS"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		title, _ := cmd.Flags().GetString("title")
		company, _ := cmd.Flags().GetString("company")
		required, _ := cmd.Flags().GetString("required")
		preferred, _ := cmd.Flags().GetString("preferred")

		if title == "" {
			return fmt.Errorf("--title is required")
		}
		if required == "" && preferred == "" {
			return fmt.Errorf("at least one of --required or --preferred is needed")
		}

		jd := &models.JobDescription{
			Title:           title,
			Company:         company,
			RequiredSkills:  parseSkills(required, models.ImportanceRequired),
			PreferredSkills: parseSkills(preferred, models.ImportancePreferred),
		}
		if err := a.Store.CreateJD(jd); err != nil {
			return fmt.Errorf("save job description: %w", err)
		}

		cmd.Printf("✓ Job description added: %s (ID: %s)\n", jd.Title, jd.ID)
		return nil
	},
}

var listJDCmd = &cobra.Command{
	Use:   "list",
	Short: "List all job descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		jds, err := a.Store.ListJDs()
		if err != nil {
			return fmt.Errorf("fetch job descriptions: %w", err)
		}
		if len(jds) == 0 {
			cmd.Println("No job descriptions found. Add one with 'talentreach jd add'")
			return nil
		}

		cmd.Println(titleStyle.Render("Job Descriptions"))
		for i, jd := range jds {
			cmd.Printf("\n%s. %s\n", labelStyle.Render(fmt.Sprintf("%d", i+1)), jd.Title)
			if jd.Company != "" {
				cmd.Printf("   %s %s\n", labelStyle.Render("Company:"), jd.Company)
			}
			cmd.Printf("   %s %s\n", labelStyle.Render("ID:"), jd.ID)
			cmd.Printf("   %s %d required, %d preferred\n", labelStyle.Render("Skills:"),
				len(jd.RequiredSkills), len(jd.PreferredSkills))
		}
		return nil
	},
}

var showJDCmd = &cobra.Command{
	Use:   "show <jd-id>",
	Short: "Show a job description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		jd, err := a.Store.GetJD(args[0])
		if err != nil {
			return fmt.Errorf("fetch job description: %w", err)
		}

		cmd.Println(titleStyle.Render(jd.Title))
		if jd.Company != "" {
			cmd.Printf("%s %s\n", labelStyle.Render("Company:"), valueStyle.Render(jd.Company))
		}
		cmd.Printf("%s %s\n", labelStyle.Render("Added:"), jd.CreatedAt.Format("Jan 2, 2006"))

		cmd.Println(labelStyle.Render("\nRequired skills:"))
		for _, s := range jd.RequiredSkills {
			cmd.Printf("  • %s\n", s.Skill)
		}
		if len(jd.PreferredSkills) > 0 {
			cmd.Println(labelStyle.Render("\nPreferred skills:"))
			for _, s := range jd.PreferredSkills {
				cmd.Printf("  • %s\n", s.Skill)
			}
		}
		if len(jd.ExpandedSkills) > 0 {
			cmd.Println(labelStyle.Render("\nExpanded skills:"))
			for _, e := range jd.ExpandedSkills {
				cmd.Printf("  • %s: %s\n", e.Skill, strings.Join(e.Variants, ", "))
			}
		}
		return nil
	},
}

var expandJDCmd = &cobra.Command{
	Use:   "expand <jd-id>",
	Short: "Attach expanded skill variants from a JSON file",
	Long: `Attach skill expansions (variants and related tools per requirement) to a
job description. The matcher consults these before the built-in synonym
table. The file holds a JSON array of {skill, variants, related_tools}.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return fmt.Errorf("--file is required")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read expansion file: %w", err)
		}

		var expanded []models.ExpandedSkill
		if err := json.Unmarshal(data, &expanded); err != nil {
			return fmt.Errorf("parse expansion file: %w", err)
		}

		if err := a.Store.UpdateJDExpandedSkills(args[0], expanded); err != nil {
			return fmt.Errorf("save expansions: %w", err)
		}
		cmd.Printf("✓ Attached %d skill expansions\n", len(expanded))
		return nil
	},
}

// parseSkills splits a comma-separated flag value into requirements.
func parseSkills(csv string, importance models.Importance) []models.SkillRequirement {
	var out []models.SkillRequirement
	for _, part := range strings.Split(csv, ",") {
		skill := strings.TrimSpace(part)
		if skill == "" {
			continue
		}
		out = append(out, models.SkillRequirement{Skill: skill, Importance: importance})
	}
	return out
}

func init() {
	rootCmd.AddCommand(jdCmd)
	jdCmd.AddCommand(addJDCmd)
	jdCmd.AddCommand(listJDCmd)
	jdCmd.AddCommand(showJDCmd)
	jdCmd.AddCommand(expandJDCmd)

	addJDCmd.Flags().String("title", "", "Job title")
	addJDCmd.Flags().String("company", "", "Company name")
	addJDCmd.Flags().String("required", "", "Comma-separated required skills")
	addJDCmd.Flags().String("preferred", "", "Comma-separated preferred skills")
	expandJDCmd.Flags().String("file", "", "Path to JSON expansion file")
}
