package config

import (
	"fmt"
	"io"
	"strings"
)

// validAccentColors is the set of valid ANSI color names for report headers.
//
//nolint:gochecknoglobals // package-level lookup table for color validation
var validAccentColors = map[string]bool{
	"black":         true,
	"red":           true,
	"green":         true,
	"yellow":        true,
	"blue":          true,
	"magenta":       true,
	"cyan":          true,
	"white":         true,
	"brightblack":   true,
	"brightred":     true,
	"brightgreen":   true,
	"brightyellow":  true,
	"brightblue":    true,
	"brightmagenta": true,
	"brightcyan":    true,
	"brightwhite":   true,
}

// minReportWidth is the narrowest report wrap column that is accepted
// without a warning.
const minReportWidth = 20

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("config warning: %s: %s", w.Field, w.Message)
}

// ValidationResults holds the results of configuration validation.
type ValidationResults struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are validation errors.
func (r ValidationResults) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (r ValidationResults) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// ErrorMessage returns a combined error message for all validation errors.
func (r ValidationResults) ErrorMessage() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// WriteWarnings writes all warnings to the given writer.
func (r ValidationResults) WriteWarnings(w io.Writer) {
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintln(w, warn.String())
	}
}

// Validate checks the settings for errors and warnings.
func (s *Settings) Validate() ValidationResults {
	var result ValidationResults

	if s.AccentColor != "" && !validAccentColors[strings.ToLower(s.AccentColor)] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "accent_color",
			Message: fmt.Sprintf("invalid color %q, must be one of: %s", s.AccentColor, validColorList()),
		})
	}

	switch {
	case s.ReportWidth < 0:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "report_width",
			Message: fmt.Sprintf("must not be negative, got %d", s.ReportWidth),
		})
	case s.ReportWidth > 0 && s.ReportWidth < minReportWidth:
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "report_width",
			Message: fmt.Sprintf("%d is very narrow; reports wrap at %d columns at least", s.ReportWidth, minReportWidth),
		})
	}

	if s.TSConfig == "" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "tsconfig",
			Message: fmt.Sprintf("empty, falling back to %q", DefaultTSConfig),
		})
		s.TSConfig = DefaultTSConfig
	}

	return result
}

// validColorList returns a comma-separated list of valid colors.
func validColorList() string {
	colors := []string{
		"Black", "Red", "Green", "Yellow", "Blue", "Magenta", "Cyan", "White",
		"BrightBlack", "BrightRed", "BrightGreen", "BrightYellow",
		"BrightBlue", "BrightMagenta", "BrightCyan", "BrightWhite",
	}
	return strings.Join(colors, ", ")
}
