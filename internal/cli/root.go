package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fx-rates-pipeline/internal/app"
	"fx-rates-pipeline/internal/config"
	"fx-rates-pipeline/internal/logging"
)

var (
	cfgFile    string
	logLevel   string
	outputRoot string
	appHandle  *app.App
)

var rootCmd = &cobra.Command{
	Use:   "fxpipeline",
	Short: "Batch pipeline for daily exchange-rate collection and analysis",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if outputRoot != "" {
			cfg.Storage.Root = outputRoot
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&outputRoot, "output-root", "", "Override storage root directory")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
