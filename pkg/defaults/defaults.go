// Package defaults derives the canonical base build configuration of a
// project from its configuration and its type-checking configuration file.
package defaults

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/yaklabco/stitch/config"
	"github.com/yaklabco/stitch/internal/log"
	"github.com/yaklabco/stitch/pkg/fsutils"
	"github.com/yaklabco/stitch/pkg/plugins"
)

// ErrConfigNotFound is matched by every *ConfigNotFoundError.
var ErrConfigNotFound = errors.New("type-checking configuration file not found")

// ConfigNotFoundError reports a missing type-checking configuration file.
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("could not find type-checking configuration file %q", e.Path)
}

// Is makes errors.Is(err, ErrConfigNotFound) hold.
func (e *ConfigNotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}

// Context is everything the base configuration is computed from. It is
// built once per run and never modified afterwards.
type Context struct {
	ResolvedSourcePath  string
	EntryFileRoot       string
	EntryFileName       string
	DebugEnabled        bool
	TypeCheckConfigPath string
	Plugins             []plugins.Plugin

	RelativeRootPath string
	WorkingDir       string
	AppName          string
}

// Resolver builds Contexts.
type Resolver struct {
	Loader     plugins.Loader
	WorkingDir string
}

// Resolve computes the defaults context.
//
// The type-checking configuration path is resolved against the working
// directory and must be an existing file. Plugins named under
// compilerOptions.plugins are instantiated through the loader; loader
// errors are returned as is.
func (r *Resolver) Resolve(
	ctx context.Context, project *config.Project, tsConfigPath, appName string, debug bool,
) (*Context, error) {
	wd := r.WorkingDir
	if wd == "" {
		var err error
		if wd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("determining working directory: %w", err)
		}
	}

	tsConfigAbs := tsConfigPath
	if !filepath.IsAbs(tsConfigAbs) {
		tsConfigAbs = filepath.Join(wd, tsConfigPath)
	}
	if !fsutils.IsFile(tsConfigAbs) {
		return nil, &ConfigNotFoundError{Path: tsConfigAbs}
	}

	loaded, err := r.Loader.Load(project.Plugins())
	if err != nil {
		return nil, err //nolint:wrapcheck // loader errors propagate unchanged
	}

	relRoot, err := filepath.Rel(wd, filepath.Dir(tsConfigAbs))
	if err != nil {
		return nil, fmt.Errorf("relating %s to the working directory: %w", tsConfigAbs, err)
	}

	sourceRoot := project.SourceRoot()
	var sourcePath string
	if fsutils.Contains(relRoot, sourceRoot) {
		sourcePath = filepath.Join(wd, sourceRoot)
	} else {
		sourcePath = filepath.Join(wd, relRoot, sourceRoot)
	}

	slog.DebugContext(ctx, "resolved build defaults",
		slog.String(log.Path, sourcePath),
		slog.String(log.File, tsConfigAbs),
		slog.Any(log.Plugin, plugins.Names(loaded)),
	)

	return &Context{
		ResolvedSourcePath:  sourcePath,
		EntryFileRoot:       project.Root(),
		EntryFileName:       project.EntryFile(),
		DebugEnabled:        debug,
		TypeCheckConfigPath: tsConfigAbs,
		Plugins:             loaded,
		RelativeRootPath:    relRoot,
		WorkingDir:          wd,
		AppName:             appName,
	}, nil
}
