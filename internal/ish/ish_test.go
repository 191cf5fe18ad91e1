package ish

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaklabco/stitch/pkg/fatal"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses a POSIX shell")
	}
}

func TestExecExpandsFromEnv(t *testing.T) {
	skipOnWindows(t)

	var out bytes.Buffer
	ran, err := Exec(t.Context(), Cmd{
		Env:    map[string]string{"STITCH_TEST_GREETING": "hello"},
		Stdout: &out,
		Name:   "echo",
		Args:   []string{"$STITCH_TEST_GREETING", "world"},
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "hello world\n", out.String())
}

func TestShellExitStatus(t *testing.T) {
	skipOnWindows(t)

	ran, err := Shell(t.Context(), Cmd{Stderr: &bytes.Buffer{}}, "exit 3")
	require.Error(t, err)
	assert.True(t, ran)
	assert.Equal(t, 3, fatal.ExitStatus(err))
}

func TestShellPassesEnvAndDir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	var out bytes.Buffer
	_, err := Shell(t.Context(), Cmd{
		Dir:    dir,
		Env:    map[string]string{"STITCH_TEST_MODE": "prod"},
		Stdout: &out,
	}, `echo "$STITCH_TEST_MODE" && pwd -P`)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "prod", lines[0])
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, lines[1])
}

func TestExecMissingBinary(t *testing.T) {
	ran, err := Exec(t.Context(), Cmd{Name: "stitch-no-such-binary-xyz"})
	require.Error(t, err)
	assert.False(t, ran)
	assert.False(t, CmdRan(err))
}

func TestCopyCreatesParents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o600))

	dst := filepath.Join(dir, "out", "nested", "a.txt")
	require.NoError(t, Copy(dst, src))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestRmMissingIsFine(t *testing.T) {
	assert.NoError(t, Rm(filepath.Join(t.TempDir(), "missing")))
}
