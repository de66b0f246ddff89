// Command colshift inserts columns into Excel worksheets.
package main

import (
	"context"
	"os"
	"os/signal"

	"colshift/internal/config"
	"colshift/internal/logger"

	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
	logFile    *os.File
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "colshift",
		Short: "Insert columns into Excel worksheets",
		Long: `colshift inserts an empty column into a worksheet, moving every cell at or
right of the insertion point one column to the right together with its style,
comment and column width. Formula text is kept as written.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.LoadConfig(configPath); err != nil {
				return err
			}
			logFile, err = logger.Setup(cfg.Log.Directory, cfg.Log.File, cfg.Log.Level)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.toml", "Config file path")

	rootCmd.AddCommand(
		newInsertCmd(),
		newInsertAllCmd(),
		newPickCmd(),
		newLabelCmd(),
		newIndexCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
