// Package cli implements reportctl, a command-line client for the report
// pipeline that runs against the same config and cache as the server.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"hotelstats/internal/app"
	"hotelstats/internal/config"
)

// globals holds the persistent flags.
type globals struct {
	configPath string
	verbose    bool
	noCache    bool
}

// NewRootCmd builds the reportctl command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Hotel reservation reports from the command line",
		Long:          `Fetch daily statistics and monthly occupancy calendars from the PMS vendor, using the service's cache.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", fmt.Sprintf("Config file (default: $HOTELSTATS_CONFIG or %s)", config.DefaultPath))
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Verbose debug output to stderr")
	root.PersistentFlags().BoolVar(&g.noCache, "no-cache", false, "Skip cache reads and always call the vendor")

	root.AddCommand(newStatsCmd(g))
	root.AddCommand(newReportCmd(g))
	root.AddCommand(newExportCmd(g))
	root.AddCommand(newCacheCmd(g))
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (g *globals) logger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.WarnLevel
	if g.verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func (g *globals) loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	path := g.configPath
	if path == "" {
		path = config.PathFromEnv()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if g.noCache {
		zero := 0
		cfg.Cache.TimeoutSeconds = &zero
	}
	return cfg, nil
}

// open wires the pipeline; the caller must Close the result.
func (g *globals) open(cmd *cobra.Command) (*app.App, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, nil, g.logger(cmd))
}
