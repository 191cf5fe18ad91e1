package prettylog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSetupPrettyLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := SetupPrettyLogger(&buf, false)
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	slog.Debug("hidden")
	slog.Info("shown", "target", "web")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "target=web")

	buf.Reset()
	logger = SetupPrettyLogger(&buf, true)
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	slog.Debug("visible now")
	assert.Contains(t, buf.String(), "visible now")
}
