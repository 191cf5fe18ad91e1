// Package plugins instantiates the build plugins named in a project's
// `compilerOptions.plugins` list.
package plugins

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

var (
	// ErrUnknownPlugin is returned for a plugin name with no registered
	// constructor.
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrInvalidSpec is returned for a plugin entry that is neither a name
	// nor a mapping with a name.
	ErrInvalidSpec = errors.New("invalid plugin entry")

	// ErrDuplicatePlugin is returned when a name is registered twice.
	ErrDuplicatePlugin = errors.New("plugin already registered")
)

// Plugin is an instantiated build plugin. Capabilities are discovered with
// type assertions against EnvProvider and ReportDecorator.
type Plugin interface {
	Name() string
}

// EnvProvider is a plugin contributing environment variables to the
// commands run for every build target.
type EnvProvider interface {
	Plugin
	Env() map[string]string
}

// ReportDecorator is a plugin contributing lines printed above every build
// report.
type ReportDecorator interface {
	Plugin
	Banner() string
}

// Loader turns a raw plugin configuration list into plugin instances.
type Loader interface {
	Load(specs []any) ([]Plugin, error)
}

// Constructor builds a plugin from its options.
type Constructor func(options map[string]any) (Plugin, error)

// Spec is one normalized plugin entry.
type Spec struct {
	Name    string
	Options map[string]any
}

// ParseSpec normalizes a raw plugin entry: either a plain name, or a
// mapping with a `name` and optional `options`.
func ParseSpec(raw any) (Spec, error) {
	if name, ok := raw.(string); ok {
		if name == "" {
			return Spec{}, fmt.Errorf("%w: empty name", ErrInvalidSpec)
		}
		return Spec{Name: name}, nil
	}

	m, err := cast.ToStringMapE(raw)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: %T", ErrInvalidSpec, raw)
	}
	name := cast.ToString(m["name"])
	if name == "" {
		return Spec{}, fmt.Errorf("%w: mapping without a name", ErrInvalidSpec)
	}

	opts := map[string]any{}
	if rawOpts := m["options"]; rawOpts != nil {
		opts, err = cast.ToStringMapE(rawOpts)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: plugin %q options: %w", ErrInvalidSpec, name, err)
		}
	}
	return Spec{Name: name, Options: opts}, nil
}

// Registry maps plugin names to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: map[string]Constructor{}}
}

// Default returns a registry holding the built-in plugins.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register(EnvPluginName, newEnvPlugin)
	_ = r.Register(BannerPluginName, newBannerPlugin)
	return r
}

// Register adds a constructor under name.
func (r *Registry) Register(name string, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, name)
	}
	r.ctors[name] = ctor
	return nil
}

// Names returns the registered plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := lo.Keys(r.ctors)
	sort.Strings(names)
	return names
}

// Load instantiates every entry of specs, in order.
func (r *Registry) Load(specs []any) ([]Plugin, error) {
	out := make([]Plugin, 0, len(specs))
	for i, raw := range specs {
		spec, err := ParseSpec(raw)
		if err != nil {
			return nil, fmt.Errorf("plugins[%d]: %w", i, err)
		}

		r.mu.RLock()
		ctor, ok := r.ctors[spec.Name]
		r.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownPlugin, spec.Name, r.Names())
		}

		p, err := ctor(spec.Options)
		if err != nil {
			return nil, fmt.Errorf("plugin %q: %w", spec.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Names returns the names of the given plugins, in order.
func Names(ps []Plugin) []string {
	return lo.Map(ps, func(p Plugin, _ int) string { return p.Name() })
}

// Env merges the environment of every EnvProvider; later plugins win.
func Env(ps []Plugin) map[string]string {
	out := map[string]string{}
	for _, p := range ps {
		if ep, ok := p.(EnvProvider); ok {
			for k, v := range ep.Env() {
				out[k] = v
			}
		}
	}
	return out
}

// Banners returns the non-empty banners of every ReportDecorator, in order.
func Banners(ps []Plugin) []string {
	return lo.Compact(lo.FilterMap(ps, func(p Plugin, _ int) (string, bool) {
		rd, ok := p.(ReportDecorator)
		if !ok {
			return "", false
		}
		return rd.Banner(), true
	}))
}
