// Package dryrun tracks whether commands should be printed instead of run.
//
// Dry-run mode is on when SetRequested(true) was called, or when the
// STITCH_DRYRUN environment variable held a true value at the first call to
// IsDryRun.
package dryrun

import (
	"context"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/yaklabco/stitch/pkg/env"
)

// RequestedEnv is the environment variable that requests dry-run mode.
const RequestedEnv = "STITCH_DRYRUN"

//nolint:gochecknoglobals // Once/atomic pattern.
var (
	requested atomic.Bool

	requestedEnv     bool
	requestedEnvOnce sync.Once
)

// SetRequested turns dry-run mode on or off for the process.
func SetRequested(value bool) {
	requested.Store(value)
}

// IsDryRun reports whether commands should only be printed.
func IsDryRun() bool {
	requestedEnvOnce.Do(func() {
		requestedEnv = env.FailsafeParseBoolEnv(RequestedEnv, false)
	})

	return requested.Load() || requestedEnv
}

// Wrap creates an *exec.Cmd to run a command or simulate it in dry-run mode.
// In dry-run mode the returned command echoes what would have been run.
func Wrap(ctx context.Context, cmd string, args ...string) *exec.Cmd {
	if !IsDryRun() {
		return exec.CommandContext(ctx, cmd, args...)
	}

	return exec.CommandContext(ctx, "echo", append([]string{"DRYRUN: " + cmd}, args...)...) //nolint:gosec // It's echo!
}
