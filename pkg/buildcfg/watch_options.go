package buildcfg

import (
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
)

// Watch option keys, as written in a target's `watchOptions` map.
const (
	WatchKeyAggregateTimeout = "aggregateTimeout"
	WatchKeyPoll             = "poll"
	WatchKeyIgnored          = "ignored"
)

// Timeout is an optional millisecond value. The zero Timeout is unset.
type Timeout struct {
	ms  int
	set bool
}

// TimeoutMillis returns a set Timeout of ms milliseconds.
func TimeoutMillis(ms int) Timeout {
	return Timeout{ms: ms, set: true}
}

// Millis returns the value and whether it is set.
func (t Timeout) Millis() (int, bool) {
	return t.ms, t.set
}

// Or returns the timeout as a duration, or def when unset.
func (t Timeout) Or(def time.Duration) time.Duration {
	if !t.set {
		return def
	}
	return time.Duration(t.ms) * time.Millisecond
}

func (t Timeout) String() string {
	if !t.set {
		return "unset"
	}
	return fmt.Sprintf("%dms", t.ms)
}

type pollKind int

const (
	pollUnset pollKind = iota
	pollBool
	pollInterval
)

// Poll is the `poll` watch option: unset, a boolean, or a polling interval
// in milliseconds. Poll values are comparable with ==, and a boolean never
// equals an interval.
type Poll struct {
	kind    pollKind
	enabled bool
	ms      int
}

// PollBool returns a boolean Poll.
func PollBool(enabled bool) Poll {
	return Poll{kind: pollBool, enabled: enabled}
}

// PollInterval returns a Poll with an explicit interval.
func PollInterval(ms int) Poll {
	return Poll{kind: pollInterval, enabled: true, ms: ms}
}

// IsSet reports whether the option was given.
func (p Poll) IsSet() bool {
	return p.kind != pollUnset
}

// Enabled reports whether polling replaces native filesystem events.
func (p Poll) Enabled() bool {
	return p.enabled
}

// Interval returns the polling interval, or def when the option is a plain
// boolean or unset.
func (p Poll) Interval(def time.Duration) time.Duration {
	if p.kind != pollInterval || p.ms <= 0 {
		return def
	}
	return time.Duration(p.ms) * time.Millisecond
}

func (p Poll) String() string {
	switch p.kind {
	case pollBool:
		return fmt.Sprintf("%t", p.enabled)
	case pollInterval:
		return fmt.Sprintf("%dms", p.ms)
	default:
		return "unset"
	}
}

// WatchOptions are the per-target parameters of a continuous build.
type WatchOptions struct {
	AggregateTimeout Timeout
	Poll             Poll
	Ignored          []string
}

// ParseWatchOptions decodes a raw `watchOptions` value. A nil value means
// the target gave no watch options and yields nil.
func ParseWatchOptions(raw any) (*WatchOptions, error) {
	if raw == nil {
		return nil, nil //nolint:nilnil // absent options are not an error
	}

	var m map[string]any
	switch val := raw.(type) {
	case map[string]any:
		m = val
	case Options:
		m = val
	case *WatchOptions:
		return val, nil
	case WatchOptions:
		return &val, nil
	default:
		return nil, fmt.Errorf("watchOptions: expected a mapping, got %T", raw)
	}

	var opts WatchOptions

	if v, ok := m[WatchKeyAggregateTimeout]; ok && v != nil {
		ms, ok := toInt(v)
		if !ok {
			return nil, fmt.Errorf("watchOptions.%s: expected a number, got %T", WatchKeyAggregateTimeout, v)
		}
		opts.AggregateTimeout = TimeoutMillis(ms)
	}

	if v, ok := m[WatchKeyPoll]; ok && v != nil {
		switch pv := v.(type) {
		case bool:
			opts.Poll = PollBool(pv)
		default:
			ms, ok := toInt(pv)
			if !ok {
				return nil, fmt.Errorf("watchOptions.%s: expected a boolean or a number, got %T", WatchKeyPoll, v)
			}
			opts.Poll = PollInterval(ms)
		}
	}

	opts.Ignored = lo.Compact(toStrings(m[WatchKeyIgnored]))

	return &opts, nil
}

// Map renders the options back into their `watchOptions` form.
func (w WatchOptions) Map() map[string]any {
	m := map[string]any{}
	if ms, ok := w.AggregateTimeout.Millis(); ok {
		m[WatchKeyAggregateTimeout] = ms
	}
	switch w.Poll.kind {
	case pollBool:
		m[WatchKeyPoll] = w.Poll.enabled
	case pollInterval:
		m[WatchKeyPoll] = w.Poll.ms
	default:
	}
	if len(w.Ignored) > 0 {
		m[WatchKeyIgnored] = append([]string(nil), w.Ignored...)
	}
	return m
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true //nolint:gosec // watch timings are small
	case uint64:
		return int(n), true //nolint:gosec // watch timings are small
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
