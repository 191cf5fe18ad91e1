// Package stitch is the entry point of a build: it resolves the project
// defaults, merges the caller's build configuration over them and hands
// the result to the dispatcher.
package stitch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	cblog "github.com/charmbracelet/log"
	"github.com/yaklabco/stitch/config"
	"github.com/yaklabco/stitch/internal/dryrun"
	"github.com/yaklabco/stitch/internal/ish"
	"github.com/yaklabco/stitch/internal/log"
	"github.com/yaklabco/stitch/pkg/assets"
	"github.com/yaklabco/stitch/pkg/buildcfg"
	"github.com/yaklabco/stitch/pkg/defaults"
	"github.com/yaklabco/stitch/pkg/dispatch"
	"github.com/yaklabco/stitch/pkg/engine"
	"github.com/yaklabco/stitch/pkg/engine/exec"
	"github.com/yaklabco/stitch/pkg/fsutils"
	"github.com/yaklabco/stitch/pkg/plugins"
	"github.com/yaklabco/stitch/pkg/stitch/prettylog"
	"gopkg.in/yaml.v3"
)

// ErrMalformedInput is logged when the build configuration is neither a
// single target nor a list of targets.
var ErrMalformedInput = errors.New(
	"build configuration must be a single configuration (a mapping or a function returning one) " +
		"or a list of configurations (a sequence or a function returning one)")

// AssetsStarter is an assets manager that Run starts before building.
type AssetsStarter interface {
	dispatch.AssetsCloser
	Start(ctx context.Context) error
}

// RunParams contains the args for invoking a build.
type RunParams struct {
	BaseCtx context.Context // BaseCtx is the base context for the run, often used for cancellation.

	Stdout io.Writer // writer for reports and printed configurations
	Stderr io.Writer // writer for log output

	Project     *config.Project // project configuration; loaded from ProjectFile or WorkingDir when nil
	ProjectFile string          // explicit project configuration file

	Input           buildcfg.Input // caller-supplied build configuration
	BuildConfigFile string         // file to read Input from when set

	TSConfigPath string // type-checking configuration, relative to WorkingDir
	AppName      string // application name, becomes the `name` of the base configuration
	Version      string // running stitch version, checked against the project's stitchVersion
	Debug        bool   // debug logging and debug build defaults
	Verbose      bool   // echo and stream the commands of the exec engine
	DryRun       bool   // print engine commands instead of running them
	Watch        bool   // rebuild on change
	WatchAssets  bool   // keep assets in sync while running
	PrintConfig  bool   // print the merged configuration instead of building

	Assets    dispatch.AssetsCloser // assets manager; built from the project when nil
	OnSuccess func()                // called after a successful build instead of closing asset watchers

	Engine engine.Engine  // build engine; the exec engine when nil
	Loader plugins.Loader // plugin loader; the built-in registry when nil
	Exit   func(code int) // process exit; os.Exit when nil

	WorkingDir string           // directory builds are resolved against; the current directory when empty
	Settings   *config.Settings // tool settings; config.Global() when nil
	Logger     *cblog.Logger    // dispatcher logger; a pretty logger on Stderr when nil
}

func preprocessRunParams(params *RunParams) error {
	if params.BaseCtx == nil {
		params.BaseCtx = context.Background()
	}
	if params.Stdout == nil {
		params.Stdout = os.Stdout
	}
	if params.Stderr == nil {
		params.Stderr = os.Stderr
	}
	if params.Settings == nil {
		params.Settings = config.Global()
	}
	if params.WorkingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determining working directory: %w", err)
		}
		if params.WorkingDir, err = fsutils.TruePath(wd); err != nil {
			return err //nolint:wrapcheck // fsutils errors describe the failure
		}
	}

	params.Debug = params.Debug || params.Settings.Debug
	params.Verbose = params.Verbose || params.Settings.Verbose
	params.DryRun = params.DryRun || params.Settings.DryRun

	if params.Logger == nil {
		params.Logger = prettylog.SetupPrettyLogger(params.Stderr, params.Debug)
	}
	if params.Loader == nil {
		params.Loader = plugins.Default()
	}
	return nil
}

// Run is the entrypoint for a build. Missing type-checking configuration,
// project and build configuration file errors, plugin errors and engine
// configuration errors are returned. Build failures are reported and, for
// one-shot builds, end the process through params.Exit.
func Run(params RunParams) error {
	if err := preprocessRunParams(&params); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(params.BaseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dryrun.SetRequested(params.DryRun)
	ish.SetVerbose(params.Verbose)

	project := params.Project
	if project == nil {
		var err error
		if project, err = config.LoadProject(params.WorkingDir, params.ProjectFile); err != nil {
			return err //nolint:wrapcheck // config errors name their file
		}
	}

	if err := checkVersion(project.StitchVersion(), params.Version); err != nil {
		return err
	}

	input := params.Input
	if params.BuildConfigFile != "" {
		var err error
		if input, err = buildcfg.LoadFile(resolve(params.WorkingDir, params.BuildConfigFile)); err != nil {
			return err //nolint:wrapcheck // buildcfg errors describe the file
		}
	}

	tsConfig := cmp.Or(params.TSConfigPath, project.TSConfigPath(), params.Settings.TSConfig, config.DefaultTSConfig)
	resolver := &defaults.Resolver{Loader: params.Loader, WorkingDir: params.WorkingDir}
	dctx, err := resolver.Resolve(ctx, project, tsConfig, params.AppName, params.Debug)
	if err != nil {
		return err //nolint:wrapcheck // resolver errors propagate unchanged
	}
	base := defaults.Base(dctx)

	if !input.Valid() {
		params.Logger.Error("invalid build configuration", log.Kind, input.Kind().String(), log.Error, ErrMalformedInput)
		return nil
	}

	if params.PrintConfig {
		return printConfig(params.Stdout, base, input)
	}

	closer := params.Assets
	if closer == nil {
		mgr, err := assets.New(assets.Config{
			SourceRoot: dctx.ResolvedSourcePath,
			OutDir:     resolve(params.WorkingDir, project.OutDir()),
			Patterns:   project.Assets(),
			Watch:      params.WatchAssets || project.WatchAssets(),
			Logger:     slog.Default(),
		})
		if err != nil {
			return err //nolint:wrapcheck // assets errors name the pattern
		}
		defer mgr.CloseWatchers()
		closer = mgr
	}
	if starter, ok := closer.(AssetsStarter); ok {
		if err := starter.Start(ctx); err != nil {
			return fmt.Errorf("copying assets: %w", err)
		}
	}

	eng := params.Engine
	if eng == nil {
		eng = defaultEngine(params, dctx)
	}

	dispatcher := &dispatch.Dispatcher{
		Engine:    eng,
		Assets:    closer,
		OnSuccess: params.OnSuccess,
		Reporter:  dispatch.WriterReporter{W: params.Stdout},
		Exit:      params.Exit,
		Logger:    params.Logger,
	}

	if buildcfg.IsSingle(input) {
		return dispatcher.DispatchSingle(ctx, buildcfg.Merge(base, input), params.Watch) //nolint:wrapcheck // dispatcher errors are wrapped
	}
	return dispatcher.DispatchMulti(ctx, buildcfg.MergeMulti(base, input), params.Watch) //nolint:wrapcheck // dispatcher errors are wrapped
}

func defaultEngine(params RunParams, dctx *defaults.Context) engine.Engine {
	opts := []exec.Option{
		exec.WithDir(params.WorkingDir),
		exec.WithPlugins(dctx.Plugins),
		exec.WithAccent(params.Settings.AccentColor),
		exec.WithReportWidth(params.Settings.ReportWidth),
		exec.WithLogger(slog.Default()),
	}
	if params.Verbose {
		opts = append(opts, exec.WithStream(params.Stdout))
	}
	return exec.New(opts...)
}

func printConfig(w io.Writer, base buildcfg.Options, input buildcfg.Input) error {
	var doc any = buildcfg.MergeMulti(base, input)
	if buildcfg.IsSingle(input) {
		doc = buildcfg.Merge(base, input)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:mnd // yaml indentation
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("printing configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("printing configuration: %w", err)
	}
	return nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
