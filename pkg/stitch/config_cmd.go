package stitch

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yaklabco/stitch/config"
	"gopkg.in/yaml.v3"
)

// ConfigSubcommand represents a config subcommand.
type ConfigSubcommand string

// Config subcommand constants.
const (
	ConfigInit    ConfigSubcommand = "init"
	ConfigShow    ConfigSubcommand = "show"
	ConfigPath    ConfigSubcommand = "path"
	ConfigProject ConfigSubcommand = "project"
)

// RunConfigCommand handles the `stitch config` subcommand.
// It returns the exit code.
func RunConfigCommand(stdout, stderr io.Writer, args []string) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		configUsage(stdout)
	}
	projectFile := fs.String("config", "", "project configuration file (for 'project')")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	subArgs := fs.Args()
	if len(subArgs) == 0 {
		return runConfigShow(stdout, stderr)
	}

	subcmd := ConfigSubcommand(strings.ToLower(subArgs[0]))
	switch subcmd {
	case ConfigInit:
		return runConfigInit(stdout, stderr)
	case ConfigShow:
		return runConfigShow(stdout, stderr)
	case ConfigPath:
		return runConfigPath(stdout, stderr)
	case ConfigProject:
		return runConfigProject(stdout, stderr, *projectFile)
	default:
		_, _ = fmt.Fprintf(stderr, "Error: unknown config subcommand %q\n", subArgs[0])
		configUsage(stderr)
		return 2
	}
}

func runConfigInit(stdout, stderr io.Writer) int {
	path, err := config.WriteDefaultConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "Created config file: %s\n", path)
	return 0
}

func runConfigShow(stdout, stderr io.Writer) int {
	cfg, err := config.Load(&config.LoadOptions{Stderr: stderr})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintln(stdout, "# Effective Stitch Configuration")
	if cfg.ConfigFile() != "" {
		_, _ = fmt.Fprintf(stdout, "# Loaded from: %s\n", cfg.ConfigFile())
	} else {
		_, _ = fmt.Fprintln(stdout, "# (using defaults, no config file found)")
	}
	_, _ = fmt.Fprintln(stdout)
	_, _ = fmt.Fprintf(stdout, "debug: %v\n", cfg.Debug)
	_, _ = fmt.Fprintf(stdout, "verbose: %v\n", cfg.Verbose)
	_, _ = fmt.Fprintf(stdout, "dryrun: %v\n", cfg.DryRun)
	_, _ = fmt.Fprintf(stdout, "enable_color: %v\n", cfg.EnableColor)
	_, _ = fmt.Fprintf(stdout, "accent_color: %s\n", cfg.AccentColor)
	_, _ = fmt.Fprintf(stdout, "report_width: %d\n", cfg.ReportWidth)
	_, _ = fmt.Fprintf(stdout, "tsconfig: %s\n", cfg.TSConfig)

	return 0
}

func runConfigPath(stdout, stderr io.Writer) int {
	paths := config.ResolveXDGPaths()

	_, _ = fmt.Fprintln(stdout, "Configuration Paths:")
	_, _ = fmt.Fprintf(stdout, "  User config:    %s\n", paths.ConfigFilePath())
	_, _ = fmt.Fprintf(stdout, "  Config dir:     %s\n", paths.ConfigDir())
	_, _ = fmt.Fprintf(stdout, "  Project files:  %s\n", strings.Join(config.ProjectFileNames, ", "))

	cfg, err := config.Load(&config.LoadOptions{Stderr: stderr})
	if err == nil && cfg.ConfigFile() != "" {
		_, _ = fmt.Fprintf(stdout, "\nActive config file: %s\n", cfg.ConfigFile())
	} else {
		_, _ = fmt.Fprintln(stdout, "\nNo config file currently loaded (using defaults)")
	}

	return 0
}

// runConfigProject prints the project configuration of the current
// directory, defaults included.
func runConfigProject(stdout, stderr io.Writer, projectFile string) int {
	wd, err := os.Getwd()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	project, err := config.LoadProject(wd, projectFile)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading project config: %v\n", err)
		return 1
	}

	if project.File() != "" {
		_, _ = fmt.Fprintf(stdout, "# Loaded from: %s\n", project.File())
	} else {
		_, _ = fmt.Fprintln(stdout, "# (using defaults, no project file found)")
	}
	out, err := yaml.Marshal(project.AllSettings())
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = stdout.Write(out)
	return 0
}

func configUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `
stitch config [--config FILE] [subcommand]

Manage Stitch configuration.

Subcommands:
  init     Create a default configuration file
  show     Display effective configuration (default)
  path     Show configuration file paths
  project  Display the project configuration of the current directory

Examples:
  stitch config           # Show effective configuration
  stitch config init      # Create ~/.config/stitch/config.yaml
  stitch config path      # Show config file locations
  stitch config project   # Show stitch.yaml merged with defaults
`[1:])
}
