package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talentreach/internal/matcher"
)

var matchCmd = &cobra.Command{
	Use:   "match <jd-id> [cv-id...]",
	Short: "Score CVs against a job description",
	Long: `Score candidate CVs against a job description's skill requirements.
With no cv ids, every stored CV is scored. Results are ordered best match
first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFromCmd(cmd)
		if err != nil {
			return err
		}

		jdID := args[0]
		results, err := a.MatchCVs(jdID, args[1:])
		if err != nil {
			return err
		}
		if len(results) == 0 {
			cmd.Println("No CVs to score. Add some with 'talentreach cv add'")
			return nil
		}

		jd, err := a.Store.GetJD(jdID)
		if err != nil {
			return err
		}

		cmd.Println(titleStyle.Render(fmt.Sprintf("Match Results: %s", jd.Title)))
		for i, r := range results {
			cv, err := a.Store.GetCV(r.CVID)
			name := r.CVID
			if err == nil {
				name = cv.Name
			}

			cmd.Printf("\n%s. %s  %s\n",
				labelStyle.Render(fmt.Sprintf("%d", i+1)),
				name,
				valueStyle.Render(fmt.Sprintf("%d%% (%s)", r.MatchScore, matcher.Quality(r.MatchScore))))
			if len(r.MatchedSkills) > 0 {
				cmd.Printf("   %s %s\n", labelStyle.Render("Matched:"), strings.Join(r.MatchedSkills, ", "))
			}
			if len(r.MissingRequired) > 0 {
				cmd.Printf("   %s %s\n", labelStyle.Render("Missing required:"), strings.Join(r.MissingRequired, ", "))
			}
			if len(r.MissingPreferred) > 0 {
				cmd.Printf("   %s %s\n", labelStyle.Render("Missing preferred:"), strings.Join(r.MissingPreferred, ", "))
			}
			cmd.Printf("   %s %s\n", labelStyle.Render("CV ID:"), r.CVID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
