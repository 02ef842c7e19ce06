package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/logger"
)

var (
	configFile string
	cfg        config.Config
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wordflash: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "wordflash",
		Short:         "Spaced-repetition scheduler for vocabulary cards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if err := loaded.Validate(); err != nil {
				return fmt.Errorf("invalid configuration:\n%w", err)
			}
			cfg = loaded

			logger.SetDefault(logger.New(
				logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
			))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file path")

	root.AddCommand(
		newServeCommand(),
		newStatsCommand(),
		newImportCommand(),
		newExportCommand(),
	)
	return root
}
