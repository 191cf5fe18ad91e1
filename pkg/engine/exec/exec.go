// Package exec is the reference build engine: every build target names a
// command that is run in the target's context directory, and the
// command's output is scanned for errors and warnings.
//
// A target's `command` is either a string, run through the shell, or a
// list whose first element is the program. Targets of a multi-target build
// run in dependency order (`name` and `dependencies`); a target whose
// dependency failed is skipped and reported as failed.
package exec

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/lo"
	"github.com/yaklabco/stitch/internal/log"
	"github.com/yaklabco/stitch/internal/parallelism"
	"github.com/yaklabco/stitch/pkg/buildcfg"
	"github.com/yaklabco/stitch/pkg/engine"
	"github.com/yaklabco/stitch/pkg/env"
	"github.com/yaklabco/stitch/pkg/plugins"
	"github.com/yaklabco/stitch/pkg/toposort"
)

// Engine runs build targets as commands.
type Engine struct {
	dir     string
	plugins []plugins.Plugin
	stream  io.Writer
	accent  string
	width   int
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDir sets the directory used for targets without a `context`.
func WithDir(dir string) Option {
	return func(e *Engine) { e.dir = dir }
}

// WithPlugins sets the plugins whose environment and banners apply to
// every build.
func WithPlugins(ps []plugins.Plugin) Option {
	return func(e *Engine) { e.plugins = ps }
}

// WithStream copies the live output of every command to w.
func WithStream(w io.Writer) Option {
	return func(e *Engine) { e.stream = w }
}

// WithAccent sets the colour name of report headers.
func WithAccent(name string) Option {
	return func(e *Engine) { e.accent = name }
}

// WithReportWidth wraps reports at width columns instead of the terminal
// width.
func WithReportWidth(width int) Option {
	return func(e *Engine) { e.width = width }
}

// WithLogger sets the logger for watch events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = cmp.Or(e.logger, slog.Default())
	if e.dir == "" {
		e.dir, _ = os.Getwd()
	}
	return e
}

// New prepares a compiler for the given targets. Malformed commands,
// unknown dependencies and dependency cycles are reported here. Commands
// see STITCH_NUM_PROCESSORS and GOMAXPROCS set to the worker limit, then
// the variables of the env plugins.
func (e *Engine) New(_ context.Context, cfgs ...buildcfg.Options) (engine.Compiler, error) {
	targets := make([]*target, 0, len(cfgs))
	for i, cfg := range cfgs {
		t, err := parseTarget(i, cfg, e.dir)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	sorted, err := toposort.Sort(targets, false)
	if err != nil {
		return nil, fmt.Errorf("ordering build targets: %w", err)
	}

	vars := map[string]string{}
	if err := parallelism.Apply(vars); err != nil {
		return nil, err //nolint:wrapcheck // names the variable
	}

	roots := lo.Uniq(lo.Map(sorted, func(t *target, _ int) string { return t.dir }))
	outDirs := lo.Uniq(lo.Compact(lo.Map(sorted, func(t *target, _ int) string { return t.outDir })))

	return &compiler{
		engine:  e,
		targets: sorted,
		roots:   roots,
		outDirs: outDirs,
		env:     env.With(vars, plugins.Env(e.plugins)),
		banners: plugins.Banners(e.plugins),
	}, nil
}

type compiler struct {
	engine  *Engine
	targets []*target
	roots   []string
	outDirs []string
	env     map[string]string
	banners []string

	mu      sync.Mutex
	onStart []func()
}

func (c *compiler) OnCycleStart(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStart = append(c.onStart, fn)
}

func (c *compiler) fireCycleStart() {
	c.mu.Lock()
	hooks := append([]func(){}, c.onStart...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (c *compiler) Run(ctx context.Context) (engine.Stats, error) {
	c.fireCycleStart()
	stats, err := c.build(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *compiler) build(ctx context.Context) (*Stats, error) {
	stats := newStats(c.banners, c.engine.accent, c.engine.width)
	failed := map[string]bool{}

	for _, t := range c.targets {
		if dep, ok := lo.Find(t.deps, func(d string) bool { return failed[d] }); ok {
			stats.add(&TargetResult{
				Name:    t.name,
				Command: t.display(),
				Dir:     t.dir,
				Skipped: true,
				Errors:  []string{fmt.Sprintf("skipped: dependency %q failed", dep)},
			})
			failed[t.name] = true
			continue
		}

		res, err := c.runTarget(ctx, t)
		if err != nil {
			return nil, err
		}
		stats.add(res)
		if res.Failed() {
			failed[t.name] = true
		}
	}

	stats.finish()
	return stats, nil
}

func (c *compiler) logger() *slog.Logger {
	return c.engine.logger.With(slog.Int(log.Targets, len(c.targets)))
}

func relOrAbs(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(filepath.ToSlash(p), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}
