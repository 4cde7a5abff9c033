package commands

import (
	"fmt"

	"devops-report/internal/report"

	"github.com/spf13/cobra"
)

var strategyName string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a single status report and print it to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := ""
		if strategyName == "" {
			text = orchestrator.Run(cmd.Context())
		} else {
			strategy, err := report.LookupStrategy(strategyName)
			if err != nil {
				return err
			}
			text = orchestrator.RunStrategy(cmd.Context(), strategy)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}

func init() {
	reportCmd.Flags().StringVarP(&strategyName, "strategy", "s", "", "report strategy (active-stories, open-hierarchy); defaults to the configured one")
}
