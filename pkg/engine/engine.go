// Package engine defines the boundary between stitch and a build engine:
// the engine compiles a set of target configurations, runs them once or
// keeps rebuilding them on change, and reports each cycle as Stats.
package engine

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/yaklabco/stitch/pkg/buildcfg"
)

// Engine creates compilers for build configurations.
type Engine interface {
	// New validates the configurations and prepares a compiler. An
	// invalid configuration is reported here, before any build runs.
	New(ctx context.Context, cfgs ...buildcfg.Options) (Compiler, error)
}

// Compiler runs the builds of one set of configurations.
type Compiler interface {
	// OnCycleStart registers fn to be called before every build cycle.
	OnCycleStart(fn func())

	// Run builds once. A non-nil error means the cycle failed before
	// producing stats.
	Run(ctx context.Context) (Stats, error)

	// Watch builds, then rebuilds on every change until ctx is cancelled.
	// handler is called once per cycle, never concurrently with itself.
	Watch(ctx context.Context, opts buildcfg.WatchOptions, handler func(Stats, error)) error
}

// Stats is the outcome of one build cycle.
type Stats interface {
	HasErrors() bool
	String(opts FormatOptions) string
}

// Cycled is implemented by Stats that carry the ID of their cycle.
type Cycled interface {
	CycleID() uuid.UUID
}

// FormatOptions select what a rendered report includes.
type FormatOptions struct {
	Chunks  bool
	Colors  bool
	Modules bool
	Assets  bool

	// WarningsFilter lists warning categories to leave out, matched
	// case-insensitively as substrings of the category.
	WarningsFilter []string
}

// ShowWarning reports whether a warning of the given category passes the
// filter.
func (o FormatOptions) ShowWarning(category string) bool {
	c := strings.ToLower(category)
	for _, f := range o.WarningsFilter {
		if f != "" && strings.Contains(c, strings.ToLower(f)) {
			return false
		}
	}
	return true
}

// Warning is a diagnostic that does not fail the build.
type Warning struct {
	Category string
	Message  string
}
