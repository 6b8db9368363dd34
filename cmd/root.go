package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"scanorder/internal/config"
	"scanorder/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "scanorder",
	Short: "scanorder - OCR purchase orders and create sales orders",
	Long: `scanorder reads scanned purchase orders (PNG, JPG, JPEG or PDF),
extracts their text with OCR, lets a reviewer correct it, and flags whether
the purchase order number belongs to the known allow-list before creating
a simulated sales order.

Run "scanorder serve" to start the web form.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// cfg is loaded once by main before Execute.
var cfg *config.Config

// Execute runs the root command with the loaded configuration.
func Execute(c *config.Config) {
	log := logger.WithComponent("cmd")
	cfg = c

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// loadedConfig returns the configuration passed to Execute, failing when it could not be loaded.
func loadedConfig() (*config.Config, error) {
	if cfg == nil {
		return config.Load()
	}
	return cfg, nil
}
