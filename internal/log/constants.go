// Package log holds the structured-logging field names shared across
// stitch, and the plain console logger used for verbose exec tracing.
package log

const (
	Args     = "args"
	Cmd      = "cmd"
	Count    = "count"
	Cycle    = "cycle"
	Dir      = "dir"
	Duration = "duration"
	Error    = "error"
	Expected = "expected"
	Field    = "field"
	File     = "file"
	Kind     = "kind"
	Op       = "op"
	OutDir   = "out_dir"
	Path     = "path"
	Plugin   = "plugin"
	Poll     = "poll"
	Target   = "target"
	Targets  = "targets"
	Timeout  = "timeout"
	Version  = "version"
)
