// Package cli implements the census command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tsawler/census/datasets"
	"github.com/tsawler/census/internal/config"
	"github.com/tsawler/census/logging"

	// Store drivers.
	_ "github.com/tsawler/census/store/postgres"
	_ "github.com/tsawler/census/store/sqlstore"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string

	v      *viper.Viper
	cfg    config.Config
	log    *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr).Execute()
}

// NewRootCommand builds the command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "census",
		Short: "Extract statistical tables from report pages into a database",
		Long: `census reads a table from one page of a statistical report (PDF, saved
HTML or a scanned image), normalizes its numeric cells and replaces the
contents of the dataset's database table with the result.

It also serves the loaded tables and a district census CSV over a small
JSON API.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(
		a.newIngestCommand(),
		a.newExtractCommand(),
		a.newSchemaCommand(),
		a.newDatasetsCommand(),
		a.newServeCommand(),
		a.newConfigCommand(),
		newVersionCommand(),
	)
	return root
}

// init loads configuration and builds the logger before any subcommand.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	v, cfg, err := config.New(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.v, a.cfg, a.log = v, cfg, log

	if f := cfg.Ingest.DatasetsFile; f != "" {
		if err := datasets.LoadFile(f); err != nil {
			return err
		}
		log.Debug("datasets loaded", zap.String("file", f))
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "census %s\n", Version)
		},
	}
}
