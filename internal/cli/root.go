// Package cli implements the command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/remkit/remkit/internal/config"
	"github.com/remkit/remkit/internal/ui"
)

var (
	// Global flags
	configPath   string
	hostnameFlag string

	// Resolved values
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "remkit",
	Short: "remkit - manage documents on a reMarkable tablet",
	Long: `remkit manages documents on a reMarkable tablet over SSH, treating the
device's metadata store as a folder tree.

The device is reached at the hostname from ~/.config/remkit/config.toml
(or --hostname). Connect the tablet over USB (10.11.99.1) or WiFi.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands that never touch the device skip config resolution.
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg == nil {
			cfg = &config.Config{}
		}
		ui.ConfigureTheme(cfg.UI.Accent)

		if hostnameFlag != "" {
			cfg.Hostname = hostnameFlag
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf(`%w

Either:
  1. Use --hostname <address>
  2. Set hostname in %s`, err, config.DefaultPath())
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&hostnameFlag, "hostname", "", "Device address (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for script use)")
}

// getConfig returns the loaded config.
func getConfig() *config.Config {
	return cfg
}
