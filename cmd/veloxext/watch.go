package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/syssam/veloxext/metadata/load"
)

func (a *app) watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Re-validate the metadata whenever a definition file changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "debounce", Value: 200 * time.Millisecond, Usage: "quiet period before reloading"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := a.setup(ctx, c)
			if err != nil {
				return err
			}
			if err := a.validate(e); err != nil {
				e.log.Error("watch: initial check failed", "err", err)
			}
			return a.watch(ctx, e, c.Duration("debounce"))
		},
	}
}

// watch reloads the definition files after each burst of changes until
// the context ends. Directories are watched so editors that replace
// files on save keep being tracked.
func (a *app) watch(ctx context.Context, e *env, debounce time.Duration) error {
	if len(e.paths) == 0 {
		return errors.New("watch: no metadata files")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	files := make([]string, 0, len(e.paths))
	for _, p := range e.paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		files = append(files, abs)
		if dir := filepath.Dir(abs); !slices.Contains(w.WatchList(), dir) {
			if err := w.Add(dir); err != nil {
				return fmt.Errorf("watch: %s: %w", dir, err)
			}
		}
	}
	e.log.Info("watch: started", "files", e.paths)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !slices.Contains(files, ev.Name) || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			e.log.Debug("watch: change", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			e.log.Warn("watch: watcher error", "err", err)
		case <-timer.C:
			g, err := load.Load(ctx, e.paths...)
			if err != nil {
				e.log.Error("watch: reload failed", "err", err)
				continue
			}
			e.graph = g
			if err := a.validate(e); err != nil {
				e.log.Error("watch: check failed", "err", err)
				continue
			}
			e.log.Info("watch: reloaded", "entities", len(g.Entities()))
		}
	}
}
