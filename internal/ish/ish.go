// Package ish runs the commands of build targets and performs the file
// operations of the assets manager, honouring dry-run and verbose mode.
package ish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/yaklabco/stitch/internal/dryrun"
	"github.com/yaklabco/stitch/internal/log"
	"github.com/yaklabco/stitch/pkg/env"
	"github.com/yaklabco/stitch/pkg/fatal"
)

//nolint:gochecknoglobals // process-wide switch set once from the CLI
var verbose atomic.Bool

// SetVerbose turns command echoing on or off.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// Verbose reports whether commands are echoed before they run.
func Verbose() bool {
	return verbose.Load()
}

// Cmd describes one command invocation.
type Cmd struct {
	Dir    string
	Env    map[string]string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Name   string
	Args   []string
}

// Exec runs the command. It reports whether the command ran at all; a
// command that ran and failed yields an error carrying its exit status.
// $VAR references in the name and args are expanded from Env, then from the
// process environment.
func Exec(ctx context.Context, c Cmd) (bool, error) {
	expand := func(varName string) string {
		if s, ok := c.Env[varName]; ok {
			return s
		}
		return os.Getenv(varName)
	}

	name := os.Expand(c.Name, expand)
	args := make([]string, len(c.Args))
	for i := range c.Args {
		args[i] = os.Expand(c.Args[i], expand)
	}

	ran, code, err := run(ctx, c, name, args...)
	if err == nil {
		return true, nil
	}
	if ran {
		return ran, fatal.Newf(code, `running "%s %s" failed with exit code %d`, name, strings.Join(args, " "), code)
	}
	return ran, fmt.Errorf(`failed to run "%s %s": %w`, name, strings.Join(args, " "), err)
}

// Shell runs a command line through the platform shell. No expansion is
// applied here; the shell does its own.
func Shell(ctx context.Context, c Cmd, line string) (bool, error) {
	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	ran, code, err := run(ctx, c, shell, flag, line)
	if err == nil {
		return true, nil
	}
	if ran {
		return ran, fatal.Newf(code, "%q failed with exit code %d", line, code)
	}
	return ran, fmt.Errorf("failed to run %q: %w", line, err)
}

func run(ctx context.Context, c Cmd, name string, args ...string) (bool, int, error) {
	theCmd := dryrun.Wrap(ctx, name, args...)
	theCmd.Dir = c.Dir
	theCmd.Env = env.ToAssignments(env.With(env.GetMap(), c.Env))
	theCmd.Stderr = c.Stderr
	theCmd.Stdout = c.Stdout
	theCmd.Stdin = c.Stdin

	if Verbose() {
		quoted := make([]string, 0, len(args))
		for i := range args {
			quoted = append(quoted, fmt.Sprintf("%q", args[i]))
		}
		log.SimpleConsoleLogger.Println("exec:", name, strings.Join(quoted, " "))
	}
	err := theCmd.Run()

	return CmdRan(err), ExitStatus(err), err
}

// CmdRan examines the error to determine if it was generated as a result of a
// command running via os/exec.Command.
func CmdRan(err error) bool {
	if err == nil {
		return true
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.Exited()
	}
	return false
}

// ExitStatus returns the exit status of the error if it is an exec.ExitError
// or if it implements ExitStatus() int.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var e *exec.ExitError
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return fatal.ExitStatus(err)
}

// Rm removes the given file or directory even if non-empty.
func Rm(path string) error {
	if dryrun.IsDryRun() {
		_, err := fmt.Println("DRYRUN: rm", path) //nolint:forbidigo // This is intentional console output.
		return err
	}

	err := os.RemoveAll(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf(`failed to remove %s: %w`, path, err)
}

// Copy copies the source file to dst, creating dst's parent directories.
func Copy(dst string, src string) error {
	if dryrun.IsDryRun() {
		_, err := fmt.Println("DRYRUN: cp", src, dst) //nolint:forbidigo // This is intentional console output.
		return err
	}

	from, err := os.Open(src)
	if err != nil {
		return fmt.Errorf(`can't copy %s: %w`, src, err)
	}
	defer func() { _ = from.Close() }()
	finfo, err := from.Stat()
	if err != nil {
		return fmt.Errorf(`can't stat %s: %w`, src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf(`can't create directory for %s: %w`, dst, err)
	}
	to, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, finfo.Mode())
	if err != nil {
		return fmt.Errorf(`can't copy to %s: %w`, dst, err)
	}
	defer func() { _ = to.Close() }()
	if _, err := io.Copy(to, from); err != nil {
		return fmt.Errorf(`error copying %s to %s: %w`, src, dst, err)
	}
	return nil
}
