// Package stitch holds the stitch command line.
package stitch

import (
	"context"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/yaklabco/stitch/cmd/stitch/version"
	"github.com/yaklabco/stitch/config"
	"github.com/yaklabco/stitch/pkg/buildcfg"
	"github.com/yaklabco/stitch/pkg/fatal"
	"github.com/yaklabco/stitch/pkg/stitch"
	"github.com/yaklabco/stitch/pkg/ui"
)

const (
	shortDescription = "Stitch resolves build defaults for a TypeScript project, " +
		"merges your build configuration over them and runs the build."
)

type rootCmdOptions struct {
	runFunc       func(params stitch.RunParams) error
	configCmdFunc func(cmd *cobra.Command, args []string) int
}

type Option func(*rootCmdOptions)

// This is intentionally designed to be unusable from outside this package,
// as it exists purely for testing purposes.
func withRunFunc(fn func(params stitch.RunParams) error) Option {
	return func(opts *rootCmdOptions) {
		opts.runFunc = fn
	}
}

func NewRootCmd(ctx context.Context, opts ...Option) *cobra.Command {
	rootCmdOpts := &rootCmdOptions{
		runFunc: stitch.Run,
		configCmdFunc: func(cmd *cobra.Command, args []string) int {
			return stitch.RunConfigCommand(cmd.OutOrStdout(), cmd.ErrOrStderr(), args)
		},
	}
	for _, opt := range opts {
		opt(rootCmdOpts)
	}

	settings := config.Global()

	var runParams stitch.RunParams
	rootCmd := &cobra.Command{
		Use:   "stitch [flags] [app]",
		Short: shortDescription,
		Example: `	# Build with the defaults of ./tsconfig.json and ./stitch.yaml
	stitch

	# Build one app of a monorepo, rebuilding on change
	stitch -p apps/api/tsconfig.json --watch api

	# Lay a build configuration (one target or a list) over the defaults
	stitch -b build.yaml

	# Show the merged configuration instead of building
	stitch -b build.yaml --print-config

	# Manage configuration
	stitch config show`,
		Version: version.String(ui.ColorEnabled()),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				runParams.AppName = args[0]
			}
			if runParams.BuildConfigFile == "" {
				runParams.Input = buildcfg.Single(buildcfg.Options{})
			}
			runParams.Stdout = cmd.OutOrStdout()
			runParams.Stderr = cmd.ErrOrStderr()
			runParams.Settings = settings
			runParams.Version = version.EffectiveVersion()
			runParams.BaseCtx = cmd.Context() //nolint:fatcontext // intentionally setting context from cmd

			return rootCmdOpts.runFunc(runParams)
		},
	}

	// Flags.
	rootCmd.PersistentFlags().BoolVarP(&runParams.Debug, "debug", "d", settings.Debug, "turn on debug messages and debug build defaults")
	rootCmd.PersistentFlags().BoolVarP(&runParams.Verbose, "verbose", "v", settings.Verbose, "echo and stream the commands the build runs")
	rootCmd.PersistentFlags().BoolVar(&runParams.DryRun, "dryrun", settings.DryRun, "print build commands instead of executing them")

	rootCmd.Flags().StringVarP(&runParams.ProjectFile, "config", "c", "", "project configuration file (default stitch.yaml)")
	rootCmd.Flags().StringVarP(&runParams.TSConfigPath, "path", "p", "", "type-checking configuration file (default "+settings.TSConfig+")")
	rootCmd.Flags().StringVarP(&runParams.BuildConfigFile, "build-config", "b", "", "build configuration file (YAML, JSON or TOML)")
	rootCmd.Flags().BoolVarP(&runParams.Watch, "watch", "w", false, "rebuild on change")
	rootCmd.Flags().BoolVar(&runParams.WatchAssets, "watch-assets", false, "keep assets in sync with the output directory")
	rootCmd.Flags().BoolVar(&runParams.PrintConfig, "print-config", false, "print the merged build configuration and exit")

	rootCmd.AddCommand(&cobra.Command{
		Use:                "config [init|show|path|project]",
		Short:              "Manage stitch configuration",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := rootCmdOpts.configCmdFunc(cmd, args); code != 0 {
				return fatal.Newf(code, "config command failed")
			}
			return nil
		},
	})

	return rootCmd
}

// ExecuteWithFang runs the root Cobra command with Fang-specific options.
func ExecuteWithFang(ctx context.Context, rootCmd *cobra.Command) error {
	//nolint:wrapcheck // top-level error from cobra, wrapping not needed
	return fang.Execute(
		ctx, rootCmd, fang.WithVersion(rootCmd.Version), fang.WithoutManpage())
}

// Main runs stitch with the process arguments and returns the exit code.
func Main() int {
	ctx := context.Background()

	rootCmd := NewRootCmd(ctx)
	return fatal.ExitStatus(ExecuteWithFang(ctx, rootCmd))
}
