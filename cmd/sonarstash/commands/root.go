// Package commands contains all CLI commands for sonarstash.
//
// This package uses the Cobra library for CLI management. Each command is
// defined in its own file and registered in init().
package commands

import (
	"github.com/spf13/cobra"

	"github.com/sonarstash/sonarstash/internal/config"
	"github.com/sonarstash/sonarstash/internal/logger"
)

var (
	// cfgFile holds the path to the config file (from --config flag)
	cfgFile string

	// verbose enables debug logging
	verbose bool

	// quiet suppresses everything below error level
	quiet bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sonarstash",
	Short: "Push SonarQube analysis results to a Stash pull request",
	Long: `sonarstash bridges a SonarQube analysis and a Stash/Bitbucket Server
pull request. It posts the analysis findings as inline comments, optionally
posts an analysis overview, and approves or unapproves the pull request
according to the configured severity policy.

Examples:
  # Decorate the configured pull request
  sonarstash run

  # Decorate a specific pull request
  sonarstash run --project FOO --repository bar --pull-request-id 42

  # Show the effective configuration
  sonarstash config show`,

	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .sonarstash.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
}

// newLogger builds the process logger from configuration and flags.
func newLogger(cfg *config.Config) *logger.Logger {
	log := logger.Default()
	level := logger.ParseLevel(cfg.Log.Level)
	if verbose {
		level = logger.LevelDebug
	}
	if quiet {
		level = logger.LevelError
	}
	log.SetLevel(level)
	return log
}
