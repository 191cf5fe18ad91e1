package buildcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// TargetsKey holds the target list of a multi-target TOML document, which
// cannot have a top-level array.
const TargetsKey = "targets"

// LoadFile reads a build configuration from a YAML, JSON or TOML file. A
// top-level sequence is a multi-target configuration; a mapping is a
// single-target one.
func LoadFile(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, fmt.Errorf("reading build configuration: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(data)
	}
	return Parse(data)
}

// Parse decodes a YAML or JSON build configuration document.
func Parse(data []byte) (Input, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Input{}, fmt.Errorf("parsing build configuration: %w", err)
	}
	return fromDocument(doc)
}

// ParseTOML decodes a TOML build configuration. A document whose only key
// is an array of tables under TargetsKey is a multi-target configuration.
func ParseTOML(data []byte) (Input, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Input{}, fmt.Errorf("parsing build configuration: %w", err)
	}
	if targets, ok := doc[TargetsKey].([]any); ok && len(doc) == 1 {
		return fromDocument(targets)
	}
	if doc == nil {
		return Single(Options{}), nil
	}
	return Single(Options(doc)), nil
}

func fromDocument(doc any) (Input, error) {
	switch val := doc.(type) {
	case map[string]any:
		return Single(Options(val)), nil
	case []any:
		cfgs := make([]Options, 0, len(val))
		for i, item := range val {
			m, ok := item.(map[string]any)
			if !ok {
				return Input{}, fmt.Errorf("build configuration entry %d: expected a mapping, got %T", i, item)
			}
			cfgs = append(cfgs, Options(m))
		}
		return Multi(cfgs...), nil
	case nil:
		return Single(Options{}), nil
	default:
		return Input{}, fmt.Errorf("build configuration: expected a mapping or a sequence, got %T", doc)
	}
}
