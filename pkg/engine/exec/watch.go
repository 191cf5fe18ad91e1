package exec

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/yaklabco/stitch/internal/log"
	"github.com/yaklabco/stitch/pkg/buildcfg"
	"github.com/yaklabco/stitch/pkg/engine"
	"golang.org/x/sync/errgroup"
)

// Watch defaults.
const (
	DefaultAggregateTimeout = 300 * time.Millisecond
	DefaultPollInterval     = time.Second
)

//nolint:gochecknoglobals // fixed list
var skippedDirNames = []string{".git", "node_modules"}

// Watch runs a first cycle, then a new cycle whenever files under the
// targets' context directories change. Changes arriving within the
// aggregate timeout of each other are folded into one cycle. Output
// directories, .git, node_modules and paths matching opts.Ignored are not
// watched.
func (c *compiler) Watch(ctx context.Context, opts buildcfg.WatchOptions, handler func(engine.Stats, error)) error {
	ignored, err := compileGlobs(opts.Ignored)
	if err != nil {
		return err
	}
	w := &watchSession{c: c, ignored: ignored}

	changes := make(chan string, 64) //nolint:mnd // absorbs bursts while a cycle runs
	group, gctx := errgroup.WithContext(ctx)

	if opts.Poll.Enabled() {
		interval := opts.Poll.Interval(DefaultPollInterval)
		group.Go(func() error { return w.poll(gctx, interval, changes) })
	} else {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		for _, root := range c.roots {
			if err := w.addTree(fsw, root); err != nil {
				_ = fsw.Close()
				return err
			}
		}
		group.Go(func() error { return w.notify(gctx, fsw, changes) })
	}

	delay := opts.AggregateTimeout.Or(DefaultAggregateTimeout)
	c.logger().InfoContext(ctx, "watching for changes",
		slog.Any(log.Dir, c.roots),
		slog.Duration(log.Timeout, delay),
		slog.String(log.Poll, opts.Poll.String()),
	)

	group.Go(func() error {
		c.cycle(gctx, handler)

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-gctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return nil
			case path := <-changes:
				c.logger().DebugContext(gctx, "change detected", slog.String(log.Path, path))
				if timer == nil {
					timer = time.NewTimer(delay)
				} else {
					timer.Reset(delay)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				c.cycle(gctx, handler)
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// cycle runs one build and hands its outcome to handler, unless the watch
// was stopped while building.
func (c *compiler) cycle(ctx context.Context, handler func(engine.Stats, error)) {
	c.fireCycleStart()
	stats, err := c.build(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		handler(nil, err)
		return
	}
	handler(stats, nil)
}

type watchSession struct {
	c       *compiler
	ignored []glob.Glob
}

// skip reports whether path is excluded from watching.
func (w *watchSession) skip(path string) bool {
	if slices.Contains(skippedDirNames, filepath.Base(path)) {
		return true
	}
	for _, out := range w.c.outDirs {
		if path == out || isWithin(out, path) {
			return true
		}
	}
	for _, root := range w.c.roots {
		if !isWithin(root, path) && path != root {
			continue
		}
		rel := filepath.ToSlash(relOrAbs(root, path))
		for _, g := range w.ignored {
			if g.Match(rel) || g.Match(filepath.ToSlash(path)) {
				return true
			}
		}
	}
	return false
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != "." && !filepath.IsAbs(rel) && rel != ".." &&
		!hasDotDotPrefix(rel)
}

func hasDotDotPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && os.IsPathSeparator(rel[2])
}

func (w *watchSession) addTree(fsw *fsnotify.Watcher, root string) error {
	//nolint:wrapcheck // walk errors are wrapped below
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skip(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	return nil
}

func (w *watchSession) notify(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- string) error {
	defer func() { _ = fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.skip(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, event.Name); err != nil {
						w.c.logger().WarnContext(ctx, "cannot watch new directory",
							slog.String(log.Path, event.Name), slog.Any(log.Error, err))
					}
				}
			}
			select {
			case changes <- event.Name:
			case <-ctx.Done():
				return nil
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.c.logger().WarnContext(ctx, "file watcher error", slog.Any(log.Error, err))
		}
	}
}

type fileStamp struct {
	mod  time.Time
	size int64
}

func (w *watchSession) snapshot() map[string]fileStamp {
	snap := map[string]fileStamp{}
	for _, root := range w.c.roots {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // vanished entries are simply not in the snapshot
			}
			if path != root && w.skip(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if info, err := d.Info(); err == nil {
				snap[path] = fileStamp{mod: info.ModTime(), size: info.Size()}
			}
			return nil
		})
	}
	return snap
}

func (w *watchSession) poll(ctx context.Context, interval time.Duration, changes chan<- string) error {
	prev := w.snapshot()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		cur := w.snapshot()
		var changed []string
		for path, stamp := range cur {
			if old, ok := prev[path]; !ok || old != stamp {
				changed = append(changed, path)
			}
		}
		for path := range prev {
			if _, ok := cur[path]; !ok {
				changed = append(changed, path)
			}
		}
		prev = cur

		slices.Sort(changed)
		for _, path := range changed {
			select {
			case changes <- path:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
