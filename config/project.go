package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Project configuration keys. Keys are dotted paths into the project file
// and are matched case-insensitively.
const (
	KeySourceRoot    = "sourceRoot"
	KeyEntryFile     = "entryFile"
	KeyRoot          = "root"
	KeyPlugins       = "compilerOptions.plugins"
	KeyAssets        = "compilerOptions.assets"
	KeyWatchAssets   = "compilerOptions.watchAssets"
	KeyOutDir        = "compilerOptions.outDir"
	KeyTSConfigPath  = "compilerOptions.tsConfigPath"
	KeyStitchVersion = "stitchVersion"
)

// Per-key defaults used when the project configuration omits a key.
const (
	DefaultSourceRoot  = "src"
	DefaultEntryFile   = "main"
	DefaultRoot        = ""
	DefaultOutDir      = "dist"
	DefaultWatchAssets = false
)

// ProjectFileNames are the file names searched for when no project file is
// given explicitly, in order.
//
//nolint:gochecknoglobals // lookup table
var ProjectFileNames = []string{
	ProjectConfigFileName + ".yaml",
	ProjectConfigFileName + ".yml",
	ProjectConfigFileName + ".json",
}

// Project is a host project's configuration: a tree of values addressed by
// dotted keys, each with a documented default.
type Project struct {
	v    *viper.Viper
	file string
}

func newProjectViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeySourceRoot, DefaultSourceRoot)
	v.SetDefault(KeyEntryFile, DefaultEntryFile)
	v.SetDefault(KeyRoot, DefaultRoot)
	v.SetDefault(KeyPlugins, []any{})
	v.SetDefault(KeyAssets, []any{})
	v.SetDefault(KeyWatchAssets, DefaultWatchAssets)
	v.SetDefault(KeyOutDir, DefaultOutDir)
	return v
}

// NewProject builds a project configuration from in-memory values.
func NewProject(values map[string]any) (*Project, error) {
	v := newProjectViper()
	if len(values) > 0 {
		if err := v.MergeConfigMap(values); err != nil {
			return nil, fmt.Errorf("failed to merge project config: %w", err)
		}
	}
	return &Project{v: v}, nil
}

// LoadProject reads the project configuration. When path is empty the
// ProjectFileNames are searched for in dir; if none exists the project
// consists of defaults only.
func LoadProject(dir, path string) (*Project, error) {
	if path == "" {
		for _, name := range ProjectFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	v := newProjectViper()
	if path == "" {
		return &Project{v: v}, nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("project config %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read project config file: %w", err)
	}

	return &Project{v: v, file: path}, nil
}

// File returns the path the project was loaded from, if any.
func (p *Project) File() string {
	return p.file
}

// SourceRoot returns the configured source root.
func (p *Project) SourceRoot() string {
	return p.v.GetString(KeySourceRoot)
}

// EntryFile returns the configured entry file name, without extension.
func (p *Project) EntryFile() string {
	return p.v.GetString(KeyEntryFile)
}

// Root returns the configured entry root inside the source root.
func (p *Project) Root() string {
	return p.v.GetString(KeyRoot)
}

// Plugins returns the raw plugin configuration list.
func (p *Project) Plugins() []any {
	return cast.ToSlice(p.v.Get(KeyPlugins))
}

// Assets returns the asset glob patterns to copy next to the build output.
func (p *Project) Assets() []string {
	return cast.ToStringSlice(p.v.Get(KeyAssets))
}

// WatchAssets reports whether assets are re-copied on change.
func (p *Project) WatchAssets() bool {
	return p.v.GetBool(KeyWatchAssets)
}

// OutDir returns the build output directory.
func (p *Project) OutDir() string {
	return p.v.GetString(KeyOutDir)
}

// TSConfigPath returns the type-checking configuration path configured by
// the project, or an empty string.
func (p *Project) TSConfigPath() string {
	return p.v.GetString(KeyTSConfigPath)
}

// StitchVersion returns the semantic version constraint the project places
// on the stitch binary, or an empty string.
func (p *Project) StitchVersion() string {
	return p.v.GetString(KeyStitchVersion)
}

// AllSettings returns every configured value, defaults included.
func (p *Project) AllSettings() map[string]any {
	return p.v.AllSettings()
}
