package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"talentreach/internal/workflow"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Manage the outreach pipeline",
	Long:  "List pipeline candidates and apply workflow actions",
}

var listWorkflowCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's pipeline candidates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		candidates, err := a.Engine.CandidatesByProject(args[0])
		if err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		if len(candidates) == 0 {
			cmd.Println("No candidates in this project. Promote some with 'talentreach graduate'")
			return nil
		}

		cmd.Println(titleStyle.Render("Outreach Pipeline"))
		for i, c := range candidates {
			cmd.Printf("\n%s. %s  %s\n",
				labelStyle.Render(fmt.Sprintf("%d", i+1)),
				c.Name,
				valueStyle.Render(fmt.Sprintf("[%s]", c.Status)))
			cmd.Printf("   %s %s\n", labelStyle.Render("CV ID:"), c.ID)
			cmd.Printf("   %s %d%%\n", labelStyle.Render("Match:"), c.MatchScore)
			if c.LastMessageAt != nil {
				cmd.Printf("   %s %s — %s\n", labelStyle.Render("Last message:"),
					c.LastMessageAt.Format("Jan 2 15:04"), c.LastMessageSnippet)
			}
		}
		return nil
	},
}

// workflowActionCmd builds one verb subcommand; all five verbs share the
// same shape.
func workflowActionCmd(use, short string, run func(*workflow.Engine, *cobra.Command, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <candidate-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := run(a.Engine, cmd, args[0]); err != nil {
				if errors.Is(err, workflow.ErrIllegalTransition) {
					return fmt.Errorf("cannot %s this candidate: %v", use, err)
				}
				return err
			}
			cmd.Printf("✓ %s applied to %s\n", use, args[0])
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(workflowCmd)
	workflowCmd.AddCommand(listWorkflowCmd)
	workflowCmd.AddCommand(workflowActionCmd("pause", "Pause outreach for a candidate",
		func(e *workflow.Engine, cmd *cobra.Command, id string) error {
			return e.Pause(cmd.Context(), id)
		}))
	workflowCmd.AddCommand(workflowActionCmd("resume", "Resume a paused candidate",
		func(e *workflow.Engine, cmd *cobra.Command, id string) error {
			return e.Resume(cmd.Context(), id)
		}))
	workflowCmd.AddCommand(workflowActionCmd("cancel", "Archive a candidate",
		func(e *workflow.Engine, cmd *cobra.Command, id string) error {
			return e.Cancel(cmd.Context(), id)
		}))
	workflowCmd.AddCommand(workflowActionCmd("force-call", "Force an immediate contact attempt",
		func(e *workflow.Engine, cmd *cobra.Command, id string) error {
			return e.ForceCall(cmd.Context(), id)
		}))
	workflowCmd.AddCommand(workflowActionCmd("skip-to-screening", "Advance a candidate to screening",
		func(e *workflow.Engine, cmd *cobra.Command, id string) error {
			return e.SkipToScreening(cmd.Context(), id)
		}))
}
