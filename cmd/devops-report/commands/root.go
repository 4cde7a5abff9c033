package commands

import (
	"devops-report/internal/config"
	"devops-report/internal/devops"
	"devops-report/internal/llm"
	"devops-report/internal/logging"
	"devops-report/internal/report"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	orchestrator *report.Orchestrator
)

var rootCmd = &cobra.Command{
	Use:   "devops-report",
	Short: "Generate AI status reports from Azure DevOps work items",
	Long: `Fetches Epics, User Stories and Tasks from an Azure DevOps project, assembles them
into a hierarchy and asks a language model for a markdown status report.
Reports can be requested from a browser (serve), printed once (report) or
exposed as an MCP tool over stdio (mcp).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		orchestrator = report.New(
			report.NewFetcher(devops.NewClient(cfg.DevOps)),
			llm.NewClient(cfg.LLM),
			cfg.Report,
		)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("strategy", cfg.Report.Strategy.Name).
			Msg("devops-report starting")
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(serveCmd, reportCmd, mcpCmd)
}
