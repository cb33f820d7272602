// Package commands implements examctl, a command line front end to the exam
// schedule scraper and store.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yigit/prelimplanner/internal/bootstrap"
	"github.com/yigit/prelimplanner/internal/config"
	"github.com/yigit/prelimplanner/internal/db"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

type options struct {
	configPath string
}

// NewRootCmd builds the examctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "examctl",
		Short:         "examctl scrapes registrar exam schedules and manages the stored tables.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", bootstrap.DefaultConfigPath, "Path to the YAML configuration file.")

	root.AddCommand(
		newScrapeCmd(opts),
		newPopulateCmd(opts),
		newCoursesCmd(opts),
		newExamsCmd(opts),
		newTablesCmd(opts),
	)
	return root
}

// ExecuteContext runs examctl and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func (o *options) load() (*config.Config, zerolog.Logger, error) {
	return bootstrap.LoadConfigAndSetupLogger(o.configPath)
}

// app is a fully wired application for commands that touch the database.
type app struct {
	database *db.Database
	deps     *bootstrap.Dependencies
}

func (o *options) open(ctx context.Context) (*app, error) {
	cfg, lgr, err := o.load()
	if err != nil {
		return nil, err
	}
	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		database.Close()
		return nil, err
	}
	return &app{database: database, deps: deps}, nil
}

func (a *app) Close() {
	a.database.Close()
	logger.Debug().Msg("examctl database closed")
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}
