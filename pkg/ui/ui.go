// Package ui holds the colours and styles shared by the CLI and build
// reports.
package ui

import (
	"image/color"
	"os"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/samber/lo"
)

// GetFangScheme returns the same light/dark-aware color scheme fang uses.
func GetFangScheme() fang.ColorScheme {
	// This mirrors fang.mustColorscheme(DefaultColorScheme)
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)
	return fang.DefaultColorScheme(lipgloss.LightDark(isDark))
}

// ANSI colour names accepted for the accent colour, in ANSI index order.
//
//nolint:gochecknoglobals // lookup table
var accentNames = []string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"brightblack", "brightred", "brightgreen", "brightyellow",
	"brightblue", "brightmagenta", "brightcyan", "brightwhite",
}

const cyanIndex = 6

// AccentColor maps an ANSI colour name (case-insensitive) to a lipgloss
// colour. Unknown names fall back to cyan.
func AccentColor(name string) color.Color {
	idx := lo.IndexOf(accentNames, strings.ToLower(strings.TrimSpace(name)))
	if idx < 0 {
		idx = cyanIndex
	}
	return lipgloss.Color(strconv.Itoa(idx))
}

// noColorTERMs are terminals that do not support ANSI color output.
//
//nolint:gochecknoglobals // lookup table
var noColorTERMs = lo.Keyify([]string{"dumb", "vt100", "cygwin", "xterm-mono"})

// ColorEnabled reports whether coloured output is appropriate: NO_COLOR is
// unset and TERM is not a known monochrome terminal.
func ColorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	_, blacklisted := noColorTERMs[os.Getenv("TERM")]
	return !blacklisted
}

// ReportStyles are the styles of a rendered build report.
type ReportStyles struct {
	Header  lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	OK      lipgloss.Style
}

// NewReportStyles returns report styles using the accent colour. Without
// colours every style renders plain text.
func NewReportStyles(accent string, colors bool) ReportStyles {
	if !colors {
		plain := lipgloss.NewStyle()
		return ReportStyles{Header: plain, Error: plain, Warning: plain, Muted: plain, OK: plain}
	}

	cs := GetFangScheme()
	return ReportStyles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(AccentColor(accent)),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Muted:   lipgloss.NewStyle().Foreground(cs.Base).Faint(true),
		OK:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
}
