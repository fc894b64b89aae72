package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/config"
	"github.com/rafaeltorresng/Sheets-to-Docs/internal/version"
)

var (
	cfgFile  string
	envFiles []string
	verbose  bool

	// Resolved in PersistentPreRunE for every subcommand
	appConfig *config.Config
	logger    *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sheets2docs",
	Short: "Generate Google Docs briefings from spreadsheet rows",
	Long: `sheets2docs reads a Google Sheets spreadsheet or a CSV file and turns the
selected rows into Google Docs documents: one document per row, or every row
in a single consolidated document.

The first column identifies each row and becomes the document title. Every
other column becomes a heading followed by the cell value.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.Load(config.LoadOptions{
			ConfigFilePath: cfgFile,
			EnvFiles:       envFiles,
		})
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = newLogger(cfg.LogLevel, verbose)
		if path != "" {
			logger.Debug("configuration loaded", "path", path)
		}
		return nil
	},
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("sheets2docs %s\n", version.String()))

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./config.toml or the user config directory)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Env files to load before reading configuration (default: .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger(level string, verbose bool) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "sheets2docs",
		ReportTimestamp: true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	l.SetLevel(lvl)
	return l
}

// Execute runs the root command
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.String()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
