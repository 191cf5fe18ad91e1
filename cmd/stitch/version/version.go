// Package version reports the stitch build version from ldflags or Go
// build info.
package version

import (
	"runtime/debug"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/yaklabco/stitch/pkg/ui"
)

// Values injected at build time:
//
//	-ldflags "-X github.com/yaklabco/stitch/cmd/stitch/version.Version=v0.1.0
//	          -X github.com/yaklabco/stitch/cmd/stitch/version.Commit=<commit>
//	          -X github.com/yaklabco/stitch/cmd/stitch/version.BuildDate=<RFC3339>"
//
//nolint:gochecknoglobals // Populated by goreleaser ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

func buildSetting(key string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// EffectiveVersion prefers the ldflags version, then the module version of
// a `go install module@version` build, then the VCS revision.
func EffectiveVersion() string {
	if v := strings.TrimSpace(Version); v != "" && v != "dev" {
		return v
	}
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		if mv := strings.TrimSpace(bi.Main.Version); mv != "" && mv != "(devel)" {
			return mv
		}
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		if buildSetting("vcs.modified") == "true" {
			return rev + "-dirty"
		}
		return rev
	}
	return "dev"
}

// EffectiveCommit returns the ldflags commit or the VCS revision.
func EffectiveCommit() string {
	if c := strings.TrimSpace(Commit); c != "" {
		return c
	}
	return buildSetting("vcs.revision")
}

// EffectiveBuildTime parses the ldflags build date, falling back to the VCS
// commit time.
func EffectiveBuildTime() (time.Time, bool) {
	for _, raw := range []string{strings.TrimSpace(BuildDate), buildSetting("vcs.time")} {
		if raw == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// String renders version, commit and build time joined by dashes, coloured
// like fang's help output when colorize is set.
func String(colorize bool) string {
	cs := ui.GetFangScheme()
	style := func(s lipgloss.Style, text string) string {
		if !colorize {
			return text
		}
		return s.Render(text)
	}

	parts := []string{style(lipgloss.NewStyle().Foreground(cs.QuotedString), EffectiveVersion())}
	if c := EffectiveCommit(); c != "" && c != parts[0] {
		parts = append(parts, style(lipgloss.NewStyle().Foreground(cs.Program), c))
	}
	if t, ok := EffectiveBuildTime(); ok {
		parts = append(parts, style(lipgloss.NewStyle().Foreground(cs.Flag), t.In(time.Local).Format(time.RFC3339)))
	}

	return strings.Join(parts, style(lipgloss.NewStyle().Foreground(cs.Base), "-"))
}
