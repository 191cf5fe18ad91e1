package exec

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/yaklabco/stitch/internal/ish"
	"github.com/yaklabco/stitch/pkg/buildcfg"
)

type target struct {
	name           string
	deps           []string
	shell          string
	argv           []string
	dir            string
	outDir         string
	ignoreWarnings []string
}

func (t *target) TPID() string              { return t.name }
func (t *target) DependencyTPIDs() []string { return t.deps }

func (t *target) noop() bool {
	return t.shell == "" && len(t.argv) == 0
}

func (t *target) display() string {
	if t.shell != "" {
		return t.shell
	}
	return strings.Join(t.argv, " ")
}

func parseTarget(i int, cfg buildcfg.Options, defaultDir string) (*target, error) {
	t := &target{
		name:           cfg.Name(),
		deps:           cfg.Strings(buildcfg.KeyDependencies),
		ignoreWarnings: cfg.Strings(buildcfg.KeyIgnoreWarnings),
	}
	if t.name == "" {
		t.name = fmt.Sprintf("target-%d", i)
	}

	switch cmd := cfg[buildcfg.KeyCommand].(type) {
	case nil:
	case string:
		t.shell = strings.TrimSpace(cmd)
	default:
		argv, err := cast.ToStringSliceE(cmd)
		if err != nil {
			return nil, fmt.Errorf("target %q: command must be a string or a list of strings, got %T", t.name, cmd)
		}
		t.argv = argv
	}

	t.dir = cfg.String(buildcfg.KeyContext, defaultDir)
	if !filepath.IsAbs(t.dir) {
		t.dir = filepath.Join(defaultDir, t.dir)
	}

	if out, ok := cfg[buildcfg.KeyOutput].(map[string]any); ok {
		if p := cast.ToString(out["path"]); p != "" {
			if !filepath.IsAbs(p) {
				p = filepath.Join(t.dir, p)
			}
			t.outDir = p
		}
	}

	return t, nil
}

func (c *compiler) runTarget(ctx context.Context, t *target) (*TargetResult, error) {
	res := &TargetResult{Name: t.name, Command: t.display(), Dir: t.dir}
	if t.noop() {
		res.Skipped = true
		return res, nil
	}

	collector := &lineCollector{res: res, ignore: t.ignoreWarnings}
	var out io.Writer = collector
	if c.engine.stream != nil {
		out = io.MultiWriter(collector, c.engine.stream)
	}
	cmd := ish.Cmd{Dir: t.dir, Env: c.env, Stdout: out, Stderr: out}

	start := time.Now()
	var ran bool
	var err error
	if t.shell != "" {
		ran, err = ish.Shell(ctx, cmd, t.shell)
	} else {
		cmd.Name, cmd.Args = t.argv[0], t.argv[1:]
		ran, err = ish.Exec(ctx, cmd)
	}
	collector.Flush()
	res.Elapsed = time.Since(start)

	if err != nil {
		if !ran {
			return nil, fmt.Errorf("target %q: %w", t.name, err)
		}
		res.ExitCode = ish.ExitStatus(err)
		res.Errors = append(res.Errors, err.Error())
	}
	return res, nil
}
