package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midl-xyz/triage/internal/search"
	"github.com/midl-xyz/triage/pkg/models"
)

// fixCmd mines an issue's comment thread for candidate solutions and locates
// where the chosen one applies in a local project tree. It only ever proposes
// a diff; nothing is written to disk.
var fixCmd = &cobra.Command{
	Use:   "fix [issue-number]",
	Short: "Prepare a fix from a resolved issue's comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		issueNumber, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid issue number: %q", args[0])
		}

		p, err := buildPipeline(cmd)
		if err != nil {
			return err
		}

		comments, err := p.tracker.GetIssueComments(cmd.Context(), issueNumber)
		if err != nil {
			return err
		}

		solutions := search.SolutionExtractor{}.Extract(models.Issue{Number: issueNumber}, comments)
		if len(solutions) == 0 {
			return fmt.Errorf("no candidate solutions found in issue #%d", issueNumber)
		}

		pick, _ := cmd.Flags().GetInt("solution")
		if pick < 1 || pick > len(solutions) {
			return fmt.Errorf("issue #%d has %d candidate solution(s); pick one with --solution", issueNumber, len(solutions))
		}

		projectRoot, _ := cmd.Flags().GetString("project")

		result, err := p.orchestrator.PrepareFix(solutions[pick-1], projectRoot)
		if err != nil {
			// Advisory outcome: the solution cannot be located
			// automatically, so hand its description to the user.
			fmt.Println(err)
			return nil
		}

		fmt.Print(renderFixResult(result))
		return nil
	},
}

// renderFixResult formats a prepared fix: either the candidate list to narrow
// down, or the diff proposal with its explanation.
func renderFixResult(result search.FixResult) string {
	var b strings.Builder

	if len(result.Candidates) > 0 {
		b.WriteString("Multiple files match this solution; narrow the project root and retry:\n")
		for _, candidate := range result.Candidates {
			fmt.Fprintf(&b, "  %s\n", candidate)
		}
		return b.String()
	}

	b.WriteString(headingColor.Sprint("Proposed fix"))
	b.WriteString("\n")
	b.WriteString(result.Diff)
	b.WriteString("\n\n")
	b.WriteString(result.Explanation)
	b.WriteString("\n")
	return b.String()
}

func init() {
	fixCmd.Flags().String("project", ".", "Project root to search for fix targets")
	fixCmd.Flags().Int("solution", 1, "Which candidate solution to prepare (1-based)")
}
