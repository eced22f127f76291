// Command veloxext inspects entity metadata, the soft deletion filters
// derived from it and the queries compiled from filter conditions.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/syssam/veloxext/config"
	"github.com/syssam/veloxext/mapping"
	"github.com/syssam/veloxext/metadata"
	"github.com/syssam/veloxext/metadata/load"
	"github.com/syssam/veloxext/softdelete"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRoot(os.Stdout, os.Stderr).Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, "veloxext:", err)
		stop()
		os.Exit(1)
	}
}

func newRoot(out, logs io.Writer) *cli.Command {
	a := &app{out: out, logs: logs}
	return &cli.Command{
		Name:  "veloxext",
		Usage: "Entity metadata, soft deletion and filter condition tooling",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file", Sources: cli.EnvVars("VELOXEXT_CONFIG")},
			&cli.StringSliceFlag{Name: "metadata", Aliases: []string{"m"}, Usage: "entity definition files, overriding metadata.paths"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			a.validateCommand(),
			a.filtersCommand(),
			a.whereCommand(),
			a.queryCommand(),
			a.watchCommand(),
		},
	}
}

type app struct {
	out  io.Writer
	logs io.Writer
}

func (a *app) logger(c *cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.logs, &slog.HandlerOptions{Level: level}))
}

// env is the state every command starts from.
type env struct {
	cfg   *config.Config
	paths []string
	graph *metadata.Graph
	log   *slog.Logger
}

func (a *app) setup(ctx context.Context, c *cli.Command) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	paths := c.StringSlice("metadata")
	if len(paths) == 0 {
		paths = cfg.Metadata.Paths
	}
	g, err := load.Load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, paths: paths, graph: g, log: a.logger(c)}, nil
}

// bootstrap builds the mapping model of the graph and runs the soft
// deletion enhancer over it.
func (e *env) bootstrap() (*mapping.Compiled, error) {
	m, err := mapping.FromGraph(e.graph, mapping.WithLogger(e.log))
	if err != nil {
		return nil, err
	}
	return mapping.Bootstrap(m, softdelete.NewEnhancer(e.graph,
		softdelete.WithEnabled(e.cfg.SoftDeletion.Enabled),
		softdelete.WithLogger(e.log),
	))
}
