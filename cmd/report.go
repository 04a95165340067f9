package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midl-xyz/triage/internal/search"
	"github.com/midl-xyz/triage/pkg/models"
)

// reportCmd drafts a bug report from a description and optionally submits it
// to the tracker. Submission only happens with an explicit --submit.
var reportCmd = &cobra.Command{
	Use:   "report [description]",
	Short: "Draft a bug report, and submit it with --submit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.Join(args, " ")

		p, err := buildPipeline(cmd)
		if err != nil {
			return err
		}

		result, err := p.orchestrator.HandleProblemReport(cmd.Context(), description, models.UserContext{})
		if err != nil {
			return err
		}

		if result.HasSolutions {
			fmt.Println(result.Response)
			fmt.Println("Existing fixes were found; use 'triage search' to review them, or re-run with --force to draft anyway.")
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return nil
			}
		}

		draft := result.ReportDraft
		if draft == nil {
			d := p.orchestrator.DraftReport(description)
			draft = &d
			fmt.Printf("**Title:** %s\n\n%s\n", draft.Title, search.ReportGenerator{}.FormatAsMarkdown(*draft))
		} else {
			fmt.Println(result.Response)
		}

		submit, _ := cmd.Flags().GetBool("submit")
		if !submit {
			return nil
		}

		submission := p.orchestrator.SubmitReport(cmd.Context(), *draft)
		if submission.Created {
			headingColor.Println("Issue created")
			fmt.Printf("#%d %s\n", submission.IssueNumber, submission.IssueURL)
			return nil
		}

		fmt.Println("Automatic submission failed; open the report manually:")
		fmt.Println(submission.FallbackURL)
		return nil
	},
}

func init() {
	reportCmd.Flags().Bool("submit", false, "Submit the drafted report to the tracker")
	reportCmd.Flags().Bool("force", false, "Draft a report even when existing fixes were found")
}
