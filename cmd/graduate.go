package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"talentreach/internal/workflow"
)

var graduateCmd = &cobra.Command{
	Use:   "graduate <project-id> <cv-id...>",
	Short: "Promote matched CVs into the outreach pipeline",
	Long: `Promote one or more CVs into a project's outreach pipeline at status
pending. Each id is graduated independently; failures are reported per id
and never abort the rest of the batch. Graduating an id twice is a no-op.

With --jd, each candidate's match score against that job description is
recorded on the pipeline entry.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		projectID := args[0]
		cvIDs := args[1:]
		jdID, _ := cmd.Flags().GetString("jd")

		scores := make(map[string]int)
		if jdID != "" {
			results, err := a.MatchCVs(jdID, cvIDs)
			if err != nil {
				return fmt.Errorf("score candidates: %w", err)
			}
			for _, r := range results {
				scores[r.CVID] = r.MatchScore
			}
		}

		infos := make(map[string]workflow.GraduateInfo)
		for _, id := range cvIDs {
			cv, err := a.Store.GetCV(id)
			if err != nil {
				// Left out of infos; GraduateBatch reports it as failed.
				continue
			}
			infos[id] = workflow.GraduateInfo{
				MatchScore:    scores[id],
				CandidateName: cv.Name,
				Phone:         cv.Phone,
				Email:         cv.Email,
			}
		}

		result := a.Engine.GraduateBatch(cvIDs, projectID, infos)

		if len(result.Success) > 0 {
			cmd.Printf("✓ Graduated %d candidate(s) into project %s\n", len(result.Success), projectID)
			for _, id := range result.Success {
				cmd.Printf("  • %s\n", id)
			}
		}
		if len(result.Failed) > 0 {
			cmd.Printf("\n%d candidate(s) failed:\n", len(result.Failed))
			for _, f := range result.Failed {
				cmd.Printf("  • %s: %s\n", f.ID, f.Reason)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graduateCmd)
	graduateCmd.Flags().String("jd", "", "Job description id used to record match scores")
}
