// Package buildcfg models build-target configurations: the opaque option
// maps handed to a build engine, the closed set of shapes in which a host
// project may supply them, and the shallow merge that lays them over the
// computed defaults.
package buildcfg

import (
	"maps"
	"slices"
)

// Well-known option keys.
const (
	KeyCommand        = "command"
	KeyContext        = "context"
	KeyDependencies   = "dependencies"
	KeyDevtool        = "devtool"
	KeyEntry          = "entry"
	KeyIgnoreWarnings = "ignoreWarnings"
	KeyMode           = "mode"
	KeyName           = "name"
	KeyOutput         = "output"
	KeyPlugins        = "plugins"
	KeyResolve        = "resolve"
	KeyTarget         = "target"
	KeyWatch          = "watch"
	KeyWatchOptions   = "watchOptions"
)

// Options is the option map of a single build target. The engine owns its
// interpretation; this package only looks at the keys it needs for
// dispatch (watch flag, watch options, name).
type Options map[string]any

// Clone returns a copy whose nested maps and slices are copied too, so no
// mutable value is shared with the receiver. A nil receiver yields an
// empty, non-nil map.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Options:
		return val.Clone()
	case map[string]any:
		return map[string]any(Options(val).Clone())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return slices.Clone(val)
	default:
		return v
	}
}

// Keys returns the option keys in sorted order.
func (o Options) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// Watch reports whether the target opted into continuous building with
// `watch: true`.
func (o Options) Watch() bool {
	w, ok := o[KeyWatch].(bool)
	return ok && w
}

// Name returns the target's name, or an empty string.
func (o Options) Name() string {
	name, _ := o[KeyName].(string)
	return name
}

// String returns a string option, or def when absent or not a string.
func (o Options) String(key, def string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return def
}

// Strings returns an option holding a single string or a list of strings.
func (o Options) Strings(key string) []string {
	return toStrings(o[key])
}

// WatchOptions decodes the target's `watchOptions` key. It returns nil when
// the key is absent.
func (o Options) WatchOptions() (*WatchOptions, error) {
	return ParseWatchOptions(o[KeyWatchOptions])
}

// AnyWatch reports whether at least one of the targets has `watch: true`.
func AnyWatch(cfgs []Options) bool {
	return slices.ContainsFunc(cfgs, Options.Watch)
}

// AllWatch reports whether every target has `watch: true`. It is false for
// an empty slice.
func AllWatch(cfgs []Options) bool {
	if len(cfgs) == 0 {
		return false
	}
	for _, c := range cfgs {
		if !c.Watch() {
			return false
		}
	}
	return true
}

func toStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []string:
		return slices.Clone(val)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
