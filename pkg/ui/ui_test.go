package ui

import (
	"os"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccentColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("1"), AccentColor("Red"))
	assert.Equal(t, lipgloss.Color("14"), AccentColor(" brightCyan "))
	assert.Equal(t, lipgloss.Color("6"), AccentColor("mauve"))
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	require.NoError(t, os.Unsetenv("NO_COLOR"))
	t.Setenv("TERM", "xterm-256color")
	assert.True(t, ColorEnabled())

	t.Setenv("TERM", "dumb")
	assert.False(t, ColorEnabled())

	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled())
}

func TestPlainReportStyles(t *testing.T) {
	styles := NewReportStyles("Red", false)
	assert.Equal(t, "ERROR in a", styles.Error.Render("ERROR in a"))
	assert.Equal(t, "build", styles.Header.Render("build"))
}
