// Package dispatch hands final build configurations to the engine and
// routes every build outcome: success callbacks, watcher teardown, reports
// and process exit.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"

	cblog "github.com/charmbracelet/log"
	"github.com/yaklabco/stitch/internal/log"
	"github.com/yaklabco/stitch/pkg/buildcfg"
	"github.com/yaklabco/stitch/pkg/defaults"
	"github.com/yaklabco/stitch/pkg/engine"
	"github.com/yaklabco/stitch/pkg/watchpolicy"
)

// ReportFormat is the fixed rendering of failure reports.
func ReportFormat() engine.FormatOptions {
	return engine.FormatOptions{
		Chunks:         false,
		Colors:         true,
		Modules:        false,
		Assets:         false,
		WarningsFilter: []string{defaults.IgnoredWarningCategory},
	}
}

// AssetsCloser tears down the watchers of the assets manager.
type AssetsCloser interface {
	CloseWatchers()
}

// Reporter prints the report of a failed build.
type Reporter interface {
	Report(stats engine.Stats)
}

// WriterReporter writes reports, rendered with ReportFormat, to W.
type WriterReporter struct {
	W io.Writer
}

func (r WriterReporter) Report(stats engine.Stats) {
	_, _ = fmt.Fprintln(r.W, stats.String(ReportFormat()))
}

// Dispatcher runs builds. Nil Reporter, Exit and Logger fall back to
// stdout, os.Exit and the default logger.
type Dispatcher struct {
	Engine    engine.Engine
	Assets    AssetsCloser
	OnSuccess func()
	Reporter  Reporter
	Exit      func(code int)
	Logger    *cblog.Logger
}

func (d *Dispatcher) logger() *cblog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return cblog.Default()
}

func (d *Dispatcher) report(stats engine.Stats) {
	if d.Reporter != nil {
		d.Reporter.Report(stats)
		return
	}
	WriterReporter{W: os.Stdout}.Report(stats)
}

func (d *Dispatcher) exit(code int) {
	if d.Exit != nil {
		d.Exit(code)
		return
	}
	os.Exit(code)
}

// DispatchSingle builds one target. With watchMode, or when the target sets
// `watch: true`, it keeps rebuilding until ctx is done.
func (d *Dispatcher) DispatchSingle(ctx context.Context, cfg buildcfg.Options, watchMode bool) error {
	compiler, err := d.prepare(ctx, cfg)
	if err != nil {
		return err
	}

	if watchMode || cfg.Watch() {
		opts, err := cfg.WatchOptions()
		if err != nil {
			d.logger().Error("cannot start watching", log.Error, err)
			return nil
		}
		if opts == nil {
			opts = &buildcfg.WatchOptions{}
		}
		return d.watch(ctx, compiler, *opts)
	}

	stats, err := compiler.Run(ctx)
	d.route(stats, err, true)
	return nil
}

// DispatchMulti builds several targets in one session. In watch mode their
// watch options are reconciled first; a conflict is logged and nothing is
// watched. A failed one-shot build exits unless every target is a watch
// target.
func (d *Dispatcher) DispatchMulti(ctx context.Context, cfgs []buildcfg.Options, watchMode bool) error {
	compiler, err := d.prepare(ctx, cfgs...)
	if err != nil {
		return err
	}

	if watchMode || buildcfg.AnyWatch(cfgs) {
		opts, err := watchpolicy.FromTargets(cfgs)
		if err != nil {
			d.logger().Error("cannot start watching", log.Targets, len(cfgs), log.Error, err)
			return nil
		}
		return d.watch(ctx, compiler, opts)
	}

	stats, err := compiler.Run(ctx)
	d.route(stats, err, !buildcfg.AllWatch(cfgs))
	return nil
}

func (d *Dispatcher) prepare(ctx context.Context, cfgs ...buildcfg.Options) (engine.Compiler, error) {
	compiler, err := d.Engine.New(ctx, cfgs...)
	if err != nil {
		return nil, fmt.Errorf("preparing build: %w", err)
	}
	compiler.OnCycleStart(func() {
		d.logger().Info("build starting", log.Targets, len(cfgs))
	})
	return compiler, nil
}

func (d *Dispatcher) watch(ctx context.Context, compiler engine.Compiler, opts buildcfg.WatchOptions) error {
	d.logger().Debug("starting watch session",
		log.Timeout, opts.AggregateTimeout.String(), log.Poll, opts.Poll.String())

	err := compiler.Watch(ctx, opts, func(stats engine.Stats, err error) {
		d.route(stats, err, false)
	})
	if err != nil {
		return fmt.Errorf("watching: %w", err)
	}
	return nil
}

// route handles the outcome of one cycle.
func (d *Dispatcher) route(stats engine.Stats, err error, exitOnFailure bool) {
	logger := d.logger()
	if c, ok := stats.(engine.Cycled); ok {
		logger = logger.With(log.Cycle, c.CycleID().String())
	}

	if err == nil && stats != nil && !stats.HasErrors() {
		logger.Debug("build succeeded")
		if d.OnSuccess != nil {
			d.OnSuccess()
		} else if d.Assets != nil {
			d.Assets.CloseWatchers()
		}
		return
	}

	if err != nil {
		logger.Error("build failed", log.Error, err)
	} else if stats != nil {
		d.report(stats)
	}
	if exitOnFailure {
		d.exit(1)
	}
}
