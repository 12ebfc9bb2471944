package commands

import (
	"github.com/spf13/cobra"

	"github.com/sonarstash/sonarstash/internal/bridge"
	"github.com/sonarstash/sonarstash/internal/config"
	"github.com/sonarstash/sonarstash/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one pull-request decoration run",
	Long: `Execute one decoration run: fetch the SonarQube findings and the
code-smell rule catalog, then post comments and the approval decision to
the configured Stash pull request.

The run never fails the calling process: configuration and remote errors
are logged and the run becomes a no-op.

Examples:
  # Decorate the pull request from the config file
  sonarstash run

  # Override the pull request on the command line
  sonarstash run --project FOO --repository bar --pull-request-id 42`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("project", "", "Stash project key")
	runCmd.Flags().String("repository", "", "Stash repository slug")
	runCmd.Flags().Int("pull-request-id", 0, "pull request id")
}

func runRun(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}
	_ = loader.BindFlag("stash.pull_request.project", cmd.Flags().Lookup("project"))
	_ = loader.BindFlag("stash.pull_request.repository", cmd.Flags().Lookup("repository"))
	_ = loader.BindFlag("stash.pull_request.id", cmd.Flags().Lookup("pull-request-id"))

	cfg, err := loader.Load()
	if err != nil {
		// A broken configuration aborts the run but never the host
		// process.
		logger.Default().Error("Unable to push SonarQube report to Stash: %v", err)
		logger.Default().Debug("Configuration error detail: %+v", err)
		return nil
	}

	log := newLogger(cfg)
	engine := bridge.NewEngine(cfg, log)
	engine.Run(cmd.Context())
	return nil
}
