package defaults

import (
	"path"
	"path/filepath"

	"github.com/yaklabco/stitch/pkg/buildcfg"
	"github.com/yaklabco/stitch/pkg/plugins"
)

// Fixed parts of the base configuration.
const (
	DefaultTarget          = "node"
	DefaultMode            = "none"
	DebugDevtool           = "inline-source-map"
	OutputDir              = "dist"
	IgnoredWarningCategory = "critical dependency"
	sourceExt              = ".ts"
	outputExt              = ".js"
)

// Extensions are the module extensions the engine resolves, in order.
//
//nolint:gochecknoglobals // fixed list, copied on use
var Extensions = []string{".tsx", ".ts", ".js"}

// EntryPath returns the absolute entry point of the build.
func (c *Context) EntryPath() string {
	return filepath.Join(c.ResolvedSourcePath, c.EntryFileRoot, c.EntryFileName+sourceExt)
}

// Base returns the default options every caller-supplied configuration is
// laid over.
func Base(c *Context) buildcfg.Options {
	var devtool any = false
	if c.DebugEnabled {
		devtool = DebugDevtool
	}

	opts := buildcfg.Options{
		buildcfg.KeyEntry:   c.EntryPath(),
		buildcfg.KeyDevtool: devtool,
		buildcfg.KeyTarget:  DefaultTarget,
		buildcfg.KeyMode:    DefaultMode,
		buildcfg.KeyContext: c.WorkingDir,
		buildcfg.KeyOutput: map[string]any{
			"filename": path.Join(filepath.ToSlash(c.EntryFileRoot), c.EntryFileName+outputExt),
			"path":     filepath.Join(c.WorkingDir, OutputDir),
		},
		buildcfg.KeyIgnoreWarnings: []any{IgnoredWarningCategory},
		buildcfg.KeyResolve: map[string]any{
			"extensions": append([]string(nil), Extensions...),
			"tsconfig":   c.TypeCheckConfigPath,
		},
		buildcfg.KeyPlugins: plugins.Names(c.Plugins),
		buildcfg.KeyWatch:   false,
	}
	if c.AppName != "" {
		opts[buildcfg.KeyName] = c.AppName
	}
	return opts
}
