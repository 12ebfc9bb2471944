package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sonarstash/sonarstash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and manage sonarstash configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the current configuration, including values from the config
file, environment variables, and defaults. Credentials are masked.

Examples:
  sonarstash config show`,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader()
	if cfgFile != "" {
		loader.SetConfigFile(cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !quiet {
		if used := loader.ConfigFileUsed(); used != "" {
			fmt.Printf("# Config file: %s\n\n", used)
		} else {
			fmt.Print("# No config file found, using defaults\n\n")
		}
	}

	data, err := yaml.Marshal(maskSensitiveConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

// maskSensitiveConfig creates a copy with credentials masked.
func maskSensitiveConfig(cfg *config.Config) *config.Config {
	masked := *cfg // shallow copy
	if masked.Stash.Password != "" {
		masked.Stash.Password = "***REDACTED***"
	}
	if masked.Sonar.Token != "" {
		masked.Sonar.Token = "***REDACTED***"
	}
	return &masked
}
