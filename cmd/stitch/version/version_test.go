package version

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLdflagsWin(t *testing.T) {
	oldV, oldC, oldB := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = oldV, oldC, oldB })

	Version, Commit, BuildDate = "v1.2.3", "abc123", "2026-01-02T03:04:05Z"

	assert.Equal(t, "v1.2.3", EffectiveVersion())
	assert.Equal(t, "abc123", EffectiveCommit())

	bt, ok := EffectiveBuildTime()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), bt.UTC())

	plain := String(false)
	assert.True(t, strings.HasPrefix(plain, "v1.2.3-abc123-"), plain)
}

func TestDevFallback(t *testing.T) {
	oldV := Version
	t.Cleanup(func() { Version = oldV })

	Version = "dev"
	assert.NotEmpty(t, EffectiveVersion())
}
