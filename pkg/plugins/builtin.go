package plugins

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/yaklabco/stitch/pkg/env"
)

// Built-in plugin names.
const (
	EnvPluginName    = "env"
	BannerPluginName = "banner"
)

// envPlugin injects variables into build commands. Options:
//
//	vars: ["NAME=value", ...]   literal assignments
//	pass: ["NAME", ...]         copied from the stitch process environment
//
// Variables are given as assignments because project configuration keys are
// case-folded.
type envPlugin struct {
	vars map[string]string
}

func newEnvPlugin(options map[string]any) (Plugin, error) {
	vars, err := stringList(options["vars"])
	if err != nil {
		return nil, fmt.Errorf("vars: %w", err)
	}
	for _, v := range vars {
		if !strings.Contains(v, "=") {
			return nil, fmt.Errorf("vars: %q is not a NAME=value assignment", v)
		}
	}

	pass, err := stringList(options["pass"])
	if err != nil {
		return nil, fmt.Errorf("pass: %w", err)
	}

	m := env.ToMap(vars)
	for _, name := range pass {
		if v, ok := os.LookupEnv(name); ok {
			m[name] = v
		}
	}

	return &envPlugin{vars: m}, nil
}

func (p *envPlugin) Name() string { return EnvPluginName }

func (p *envPlugin) Env() map[string]string {
	return env.With(nil, p.vars)
}

// bannerPlugin prints a line above each build report.
type bannerPlugin struct {
	text string
}

const defaultBanner = "stitch build"

func newBannerPlugin(options map[string]any) (Plugin, error) {
	text, err := cast.ToStringE(options["text"])
	if err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	if text == "" {
		text = defaultBanner
	}
	return &bannerPlugin{text: text}, nil
}

func (p *bannerPlugin) Name() string { return BannerPluginName }

func (p *bannerPlugin) Banner() string { return p.text }

func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	//nolint:wrapcheck // callers add the option name
	return cast.ToStringSliceE(v)
}
