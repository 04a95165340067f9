package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/midl-xyz/triage/pkg/models"
)

var (
	headingColor   = color.New(color.FgCyan, color.Bold)
	duplicateColor = color.New(color.FgYellow, color.Bold)
)

// searchCmd runs the full pipeline for a problem description and prints the
// outcome: either ranked solutions from resolved issues, or a report draft.
var searchCmd = &cobra.Command{
	Use:   "search [description]",
	Short: "Search the tracker for existing fixes to a problem",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.Join(args, " ")

		p, err := buildPipeline(cmd)
		if err != nil {
			return err
		}

		overrides := models.UserContext{}
		overrides.ErrorMessage, _ = cmd.Flags().GetString("error")
		overrides.SDKVersion, _ = cmd.Flags().GetString("sdk-version")
		overrides.Network, _ = cmd.Flags().GetString("network")
		overrides.MethodName, _ = cmd.Flags().GetString("method")

		result, err := p.orchestrator.HandleProblemReport(cmd.Context(), description, overrides)
		if err != nil {
			return err
		}

		if result.Detection != nil && len(result.Detection.Results) > 0 {
			headingColor.Println("Related issues")
			fmt.Println(colorizeDuplicates(p.detector.FormatResults(result.Detection)))
			fmt.Println()
		}

		fmt.Println(result.Response)
		return nil
	},
}

// colorizeDuplicates highlights the [DUPLICATE] markers in a formatted
// result listing.
func colorizeDuplicates(formatted string) string {
	return strings.ReplaceAll(formatted, "[DUPLICATE]", duplicateColor.Sprint("[DUPLICATE]"))
}

func init() {
	searchCmd.Flags().String("error", "", "Explicit error message (overrides extraction)")
	searchCmd.Flags().String("sdk-version", "", "Explicit SDK version (overrides extraction)")
	searchCmd.Flags().String("network", "", "Explicit network (overrides extraction)")
	searchCmd.Flags().String("method", "", "Explicit method name (overrides extraction)")
}
