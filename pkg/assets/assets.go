// Package assets copies non-compiled project files (templates, images,
// JSON, ...) from the source root into the output directory and, when
// asked to, keeps them in sync while a build is watching.
package assets

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/samber/lo"
	"github.com/yaklabco/stitch/internal/ish"
	"github.com/yaklabco/stitch/internal/log"
	"github.com/yaklabco/stitch/internal/parallelism"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by Start once CloseWatchers has run.
var ErrClosed = errors.New("assets manager is closed")

// Config configures a Manager. Patterns are matched against paths relative
// to SourceRoot, with '/' as separator.
type Config struct {
	SourceRoot string
	OutDir     string
	Patterns   []string
	Watch      bool
	Logger     *slog.Logger
}

// Manager copies assets and owns the watchers of its copy sessions.
type Manager struct {
	cfg   Config
	globs []glob.Glob

	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
	wg       sync.WaitGroup

	closeOnce sync.Once
}

// New validates the patterns and returns a manager.
func New(cfg Config) (*Manager, error) {
	cfg.Logger = cmp.Or(cfg.Logger, slog.Default())
	cfg.Patterns = lo.Compact(cfg.Patterns)

	globs := make([]glob.Glob, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		g, err := glob.Compile(filepath.ToSlash(p), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid asset pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	return &Manager{cfg: cfg, globs: globs}, nil
}

// Match reports whether the path, relative to the source root, is an asset.
func (m *Manager) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	return lo.SomeBy(m.globs, func(g glob.Glob) bool { return g.Match(rel) })
}

func (m *Manager) destination(src string) (string, string, bool) {
	rel, err := filepath.Rel(m.cfg.SourceRoot, src)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) ||
		(len(rel) > 2 && rel[:2] == ".." && os.IsPathSeparator(rel[2])) {
		return "", "", false
	}
	return rel, filepath.Join(m.cfg.OutDir, rel), true
}

func (m *Manager) inOutDir(path string) bool {
	rel, err := filepath.Rel(m.cfg.OutDir, path)
	return err == nil && (rel == "." || (rel != ".." && !filepath.IsAbs(rel) &&
		!(len(rel) > 2 && rel[:2] == ".." && os.IsPathSeparator(rel[2]))))
}

// Copy copies every asset under the source root. It returns the number of
// files copied. A missing source root copies nothing.
func (m *Manager) Copy(ctx context.Context) (int, error) {
	if len(m.globs) == 0 {
		return 0, nil
	}

	var files []string
	err := filepath.WalkDir(m.cfg.SourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == m.cfg.SourceRoot {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() {
			if path != m.cfg.SourceRoot && m.inOutDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if rel, _, ok := m.destination(path); ok && m.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scanning assets in %s: %w", m.cfg.SourceRoot, err)
	}

	limit, err := parallelism.Limit()
	if err != nil {
		return 0, err //nolint:wrapcheck // names the variable
	}
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for _, src := range files {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // cancellation
			}
			return m.copyOne(src)
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err //nolint:wrapcheck // copy errors carry their paths
	}

	m.cfg.Logger.DebugContext(ctx, "assets copied",
		slog.Int(log.Count, len(files)), slog.String(log.OutDir, m.cfg.OutDir))
	return len(files), nil
}

func (m *Manager) copyOne(src string) error {
	_, dst, ok := m.destination(src)
	if !ok {
		return nil
	}
	return ish.Copy(dst, src) //nolint:wrapcheck // ish errors carry their paths
}

// Start copies the assets and, in watch mode, starts a watcher that keeps
// the output directory in sync until ctx is done or CloseWatchers is
// called.
func (m *Manager) Start(ctx context.Context) error {
	if _, err := m.Copy(ctx); err != nil {
		return err
	}
	if !m.cfg.Watch || len(m.globs) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create assets watcher: %w", err)
	}
	if err := m.addTree(fsw, m.cfg.SourceRoot); err != nil {
		_ = fsw.Close()
		return err
	}
	m.watchers = append(m.watchers, fsw)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.watch(ctx, fsw)
	}()

	m.cfg.Logger.InfoContext(ctx, "watching assets",
		slog.String(log.Dir, m.cfg.SourceRoot), slog.Any(log.Path, m.cfg.Patterns))
	return nil
}

func (m *Manager) addTree(fsw *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if m.inOutDir(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		return fmt.Errorf("failed to watch assets in %s: %w", root, err)
	}
	return nil
}

func (m *Manager) watch(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			_ = fsw.Close()
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			m.handle(ctx, fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			m.cfg.Logger.WarnContext(ctx, "assets watcher error", slog.Any(log.Error, err))
		}
	}
}

func (m *Manager) handle(ctx context.Context, fsw *fsnotify.Watcher, event fsnotify.Event) {
	if m.inOutDir(event.Name) {
		return
	}
	rel, dst, ok := m.destination(event.Name)
	if !ok {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if err := m.addTree(fsw, event.Name); err != nil {
				m.cfg.Logger.WarnContext(ctx, "cannot watch new directory",
					slog.String(log.Path, event.Name), slog.Any(log.Error, err))
			}
			return
		}
		if !m.Match(rel) {
			return
		}
		if err := ish.Copy(dst, event.Name); err != nil {
			m.cfg.Logger.ErrorContext(ctx, "copying asset failed", slog.String(log.Path, rel), slog.Any(log.Error, err))
			return
		}
		m.cfg.Logger.DebugContext(ctx, "asset copied", slog.String(log.Path, rel))

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if !m.Match(rel) {
			return
		}
		if err := ish.Rm(dst); err != nil {
			m.cfg.Logger.ErrorContext(ctx, "removing asset failed", slog.String(log.Path, rel), slog.Any(log.Error, err))
			return
		}
		m.cfg.Logger.DebugContext(ctx, "asset removed", slog.String(log.Path, rel))
	}
}

// CloseWatchers stops every watcher started by Start and waits for them to
// exit. Later calls do nothing.
func (m *Manager) CloseWatchers() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		watchers := m.watchers
		m.watchers = nil
		m.mu.Unlock()

		for _, fsw := range watchers {
			_ = fsw.Close()
		}
		m.wg.Wait()
	})
}
