package exec

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"
	"github.com/samber/lo"
	"github.com/yaklabco/stitch/pkg/engine"
	"github.com/yaklabco/stitch/pkg/ui"
)

const (
	termWidthFloor    = 20
	fallbackTermWidth = 80
	generalCategory   = "general"
)

// TargetResult is the outcome of one target in a cycle.
type TargetResult struct {
	Name     string
	Command  string
	Dir      string
	Output   []string
	Errors   []string
	Warnings []engine.Warning
	ExitCode int
	Elapsed  time.Duration
	Skipped  bool
}

// Failed reports whether the target produced errors or a non-zero exit.
func (r *TargetResult) Failed() bool {
	return r.ExitCode != 0 || len(r.Errors) > 0
}

// Stats is the outcome of one build cycle of the exec engine.
type Stats struct {
	Targets []*TargetResult

	id      uuid.UUID
	started time.Time
	elapsed time.Duration
	banners []string
	accent  string
	width   int
}

func newStats(banners []string, accent string, width int) *Stats {
	return &Stats{
		id:      uuid.New(),
		started: time.Now(),
		banners: banners,
		accent:  accent,
		width:   width,
	}
}

func (s *Stats) add(r *TargetResult) {
	s.Targets = append(s.Targets, r)
}

func (s *Stats) finish() {
	s.elapsed = time.Since(s.started)
}

// CycleID identifies the cycle that produced the stats.
func (s *Stats) CycleID() uuid.UUID {
	return s.id
}

// HasErrors reports whether any target failed.
func (s *Stats) HasErrors() bool {
	return lo.SomeBy(s.Targets, (*TargetResult).Failed)
}

// String renders the report.
func (s *Stats) String(opts engine.FormatOptions) string {
	styles := ui.NewReportStyles(s.accent, opts.Colors)
	var b strings.Builder

	for _, banner := range s.banners {
		b.WriteString(styles.Header.Render(banner))
		b.WriteByte('\n')
	}

	var nErrors, nWarnings int
	for _, r := range s.Targets {
		status := styles.OK.Render("ok")
		switch {
		case r.Skipped && r.Failed():
			status = styles.Error.Render("skipped")
		case r.Skipped:
			status = styles.Muted.Render("nothing to run")
		case r.Failed():
			status = styles.Error.Render(fmt.Sprintf("failed (exit %d)", r.ExitCode))
		}
		fmt.Fprintf(&b, "%s %s %s\n", styles.Header.Render(r.Name), status,
			styles.Muted.Render(r.Elapsed.Round(time.Millisecond).String()))

		if opts.Modules && r.Command != "" {
			fmt.Fprintf(&b, "  command: %s\n", r.Command)
		}
		if opts.Assets {
			fmt.Fprintf(&b, "  dir: %s\n", r.Dir)
		}
		if opts.Chunks {
			for _, line := range r.Output {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "%s %s\n", styles.Error.Render("ERROR"), e)
			nErrors++
		}
		for _, w := range r.Warnings {
			if !opts.ShowWarning(w.Category) {
				continue
			}
			fmt.Fprintf(&b, "%s %s\n", styles.Warning.Render("WARNING ["+w.Category+"]"), w.Message)
			nWarnings++
		}
	}

	fmt.Fprintf(&b, "%s %d error(s), %d warning(s) in %s",
		styles.Muted.Render("cycle "+s.id.String()[:8]+":"), nErrors, nWarnings,
		s.elapsed.Round(time.Millisecond))

	return wordwrap.String(b.String(), s.reportWidth())
}

func (s *Stats) reportWidth() int {
	if s.width > 0 {
		return max(termWidthFloor, s.width)
	}
	return max(termWidthFloor, detectTermWidth())
}

// detectTermWidth prefers the actual stdout size, falls back to $COLUMNS,
// then 80.
func detectTermWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if v, err := strconv.Atoi(cols); err == nil && v > 0 {
			return v
		}
	}
	return fallbackTermWidth
}

var (
	errorLine   = regexp.MustCompile(`^(?:ERROR\b\s*:?|[Ee]rror\s*:)\s*(.*)$`)
	tsErrorLine = regexp.MustCompile(`\berror\s+TS\d+\b`)
	warningLine = regexp.MustCompile(
		`^(?:WARNING\b(?:\s*\[([^\]]*)\])?\s*:?|[Ww]arning(?:\s*\[([^\]]*)\])?\s*:)\s*(.*)$`)
)

// lineCollector splits command output into lines and classifies them.
type lineCollector struct {
	buf    bytes.Buffer
	res    *TargetResult
	ignore []string
}

func (l *lineCollector) Write(p []byte) (int, error) {
	l.buf.Write(p)
	for {
		i := bytes.IndexByte(l.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(l.buf.Next(i + 1))
		l.add(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush classifies a trailing line without a newline.
func (l *lineCollector) Flush() {
	if l.buf.Len() > 0 {
		l.add(l.buf.String())
		l.buf.Reset()
	}
}

func (l *lineCollector) add(line string) {
	l.res.Output = append(l.res.Output, line)
	trimmed := strings.TrimSpace(line)

	if m := warningLine.FindStringSubmatch(trimmed); m != nil {
		category := strings.TrimSpace(m[1] + m[2])
		if category == "" {
			category = generalCategory
		}
		if !(engine.FormatOptions{WarningsFilter: l.ignore}).ShowWarning(category) {
			return
		}
		l.res.Warnings = append(l.res.Warnings, engine.Warning{Category: category, Message: m[3]})
		return
	}

	if m := errorLine.FindStringSubmatch(trimmed); m != nil {
		l.res.Errors = append(l.res.Errors, m[1])
		return
	}
	if tsErrorLine.MatchString(trimmed) {
		l.res.Errors = append(l.res.Errors, trimmed)
	}
}
