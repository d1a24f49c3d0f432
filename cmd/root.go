package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/placefinder/internal/config"
)

// cfg is populated by bootstrap before any subcommand runs.
var cfg *config.Config

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "placefinder",
	Short: "Location autocomplete and classification for property listings",
	Long:  "Suggests places for partially typed locations, classifies listing locations as local, domestic or international, and groups catalog locations by category.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return bootstrap(cmd)
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
}

// bootstrap reads config.yaml and PLACEFINDER_* variables, applies flag
// overrides and installs the global logger.
func bootstrap(cmd *cobra.Command) error {
	c, err := config.Load()
	if err != nil {
		return eris.Wrap(err, "load config")
	}
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		c.Log.Level = logLevel
	}

	if err := config.InitLogger(c.Log); err != nil {
		return eris.Wrap(err, "init logger")
	}
	cfg = c

	zap.L().Debug("config loaded",
		zap.String("command", cmd.Name()),
		zap.String("log_level", c.Log.Level),
	)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
