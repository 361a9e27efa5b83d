package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/curator/internal/organise"
)

var limit int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Count the resources a bulk pass would process",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := scope()
		if err != nil {
			return err
		}
		count, err := components.Service.PreviewCandidateCount(cmd.Context(), s, limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Found %d unorganised resources\n", count)
		return nil
	},
}

var organiseCmd = &cobra.Command{
	Use:   "organise",
	Short: "Run one bulk pass and print its report",
	Long: `Run one bulk pass synchronously over the oldest unorganised
resources of the scope and print the report as JSON.

Examples:
  curator-cli organise --user u1 --persona student
  curator-cli organise --user u1 --persona student --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := scope()
		if err != nil {
			return err
		}
		report, err := components.Service.RunBulkPass(cmd.Context(), s, limit)
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	},
}

func init() {
	for _, c := range []*cobra.Command{previewCmd, organiseCmd} {
		c.Flags().IntVarP(&limit, "limit", "l", organise.DefaultLimit, "maximum resources to process (1-100)")
		rootCmd.AddCommand(c)
	}
}
