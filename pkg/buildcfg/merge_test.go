package buildcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefaults() Options {
	return Options{
		KeyEntry:  "/work/src/main.ts",
		KeyMode:   "none",
		KeyTarget: "node",
		KeyOutput: map[string]any{"filename": "main.js", "path": "dist"},
		KeyWatch:  false,
	}
}

func TestOverlay_ShallowLaw(t *testing.T) {
	defaults := testDefaults()
	override := Options{
		KeyMode:   "development",
		KeyOutput: map[string]any{"filename": "server.js"},
		"extra":   42,
	}

	merged := Overlay(defaults, override)

	keys := map[string]struct{}{}
	for k := range defaults {
		keys[k] = struct{}{}
	}
	for k := range override {
		keys[k] = struct{}{}
	}
	for k := range keys {
		if v, ok := override[k]; ok {
			assert.Equal(t, v, merged[k], "key %q should come from the override", k)
		} else {
			assert.Equal(t, defaults[k], merged[k], "key %q should come from the defaults", k)
		}
	}
	assert.Len(t, merged, len(keys))

	// Nested values are replaced, not merged.
	assert.Equal(t, map[string]any{"filename": "server.js"}, merged[KeyOutput])
}

func TestOverlay_DoesNotMutateArguments(t *testing.T) {
	defaults := testDefaults()
	override := Options{KeyMode: "production"}

	merged := Overlay(defaults, override)
	merged["new"] = true

	assert.Equal(t, "none", defaults[KeyMode])
	assert.NotContains(t, defaults, "new")
	assert.NotContains(t, override, "new")
}

func TestOverlay_NilArguments(t *testing.T) {
	assert.Equal(t, Options{}, Overlay(nil, nil))
	assert.Equal(t, Options{"a": 1}, Overlay(nil, Options{"a": 1}))
	assert.Equal(t, Options{"a": 1}, Overlay(Options{"a": 1}, nil))
}

func TestMerge_Literal(t *testing.T) {
	merged := Merge(testDefaults(), Single(Options{KeyMode: "development"}))

	assert.Equal(t, "development", merged[KeyMode])
	assert.Equal(t, "node", merged[KeyTarget])
}

func TestMerge_FactoryCalledOnceWithDefaults(t *testing.T) {
	defaults := testDefaults()
	calls := 0
	in := SingleFunc(func(d Options) Options {
		calls++
		assert.Equal(t, defaults, d)
		d[KeyMode] = "tampered"
		return Options{KeyEntry: "/work/src/other.ts"}
	})

	merged := Merge(defaults, in)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "/work/src/other.ts", merged[KeyEntry])
	assert.Equal(t, "none", merged[KeyMode], "factory must not be able to alter the defaults")
	assert.Equal(t, "none", defaults[KeyMode])
}

func TestMerge_FactoryReturningDefaultsUnchanged(t *testing.T) {
	merged := Merge(testDefaults(), SingleFunc(func(d Options) Options { return d }))
	assert.Equal(t, testDefaults(), merged)
}

func TestMergeMulti_LengthOrderAndIndependence(t *testing.T) {
	defaults := testDefaults()
	in := Multi(
		Options{KeyName: "api"},
		Options{KeyName: "worker", KeyMode: "production"},
		Options{KeyName: "cli", KeyWatch: true},
	)

	merged := MergeMulti(defaults, in)

	require.Len(t, merged, 3)
	assert.Equal(t, "api", merged[0].Name())
	assert.Equal(t, "worker", merged[1].Name())
	assert.Equal(t, "cli", merged[2].Name())
	assert.Equal(t, "none", merged[0][KeyMode])
	assert.Equal(t, "production", merged[1][KeyMode])
	assert.True(t, merged[2].Watch())

	merged[0][KeyMode] = "changed"
	assert.Equal(t, "none", merged[2][KeyMode])
	assert.Equal(t, "none", defaults[KeyMode])

	output, ok := merged[0][KeyOutput].(map[string]any)
	require.True(t, ok)
	output["path"] = "changed"
	assert.Equal(t, "dist", merged[1][KeyOutput].(map[string]any)["path"])
	assert.Equal(t, "dist", defaults[KeyOutput].(map[string]any)["path"])
}

func TestMerge_FactoryCannotMutateDefaults(t *testing.T) {
	defaults := testDefaults()
	defaults[KeyResolve] = map[string]any{"extensions": []any{".ts", ".js"}}

	merged := Merge(defaults, SingleFunc(func(d Options) Options {
		d[KeyOutput].(map[string]any)["path"] = "factory"
		exts := d[KeyResolve].(map[string]any)["extensions"].([]any)
		exts[0] = ".tsx"
		return Options{KeyOutput: d[KeyOutput]}
	}))

	assert.Equal(t, "factory", merged[KeyOutput].(map[string]any)["path"])
	assert.Equal(t, "dist", defaults[KeyOutput].(map[string]any)["path"])
	assert.Equal(t, []any{".ts", ".js"}, defaults[KeyResolve].(map[string]any)["extensions"])
	assert.Equal(t, []any{".ts", ".js"}, merged[KeyResolve].(map[string]any)["extensions"])
}

func TestMultiFactoryCannotMutateDefaults(t *testing.T) {
	defaults := testDefaults()

	merged := MergeMulti(defaults, MultiFunc(func(d Options) []Options {
		d[KeyOutput].(map[string]any)["path"] = "factory"
		return []Options{{KeyName: "a"}}
	}))

	require.Len(t, merged, 1)
	assert.Equal(t, "dist", merged[0][KeyOutput].(map[string]any)["path"])
	assert.Equal(t, "dist", defaults[KeyOutput].(map[string]any)["path"])
}

func TestOptionsClone_Deep(t *testing.T) {
	orig := Options{
		"nested": Options{"list": []string{"a"}},
		"items":  []any{map[string]any{"k": 1}},
	}

	c := orig.Clone()
	c["nested"].(Options)["list"].([]string)[0] = "b"
	c["items"].([]any)[0].(map[string]any)["k"] = 2

	assert.Equal(t, []string{"a"}, orig["nested"].(Options)["list"])
	assert.Equal(t, 1, orig["items"].([]any)[0].(map[string]any)["k"])
	assert.NotNil(t, Options(nil).Clone())
}

func TestMergeMulti_Factory(t *testing.T) {
	calls := 0
	in := MultiFunc(func(d Options) []Options {
		calls++
		return []Options{
			{KeyEntry: d[KeyEntry], KeyName: "a"},
			{KeyName: "b"},
		}
	})

	merged := MergeMulti(testDefaults(), in)

	assert.Equal(t, 1, calls)
	require.Len(t, merged, 2)
	assert.Equal(t, "/work/src/main.ts", merged[0][KeyEntry])
	assert.Equal(t, "b", merged[1].Name())
}

func TestMergeMulti_Empty(t *testing.T) {
	assert.Empty(t, MergeMulti(testDefaults(), Multi()))
}

func TestMergeMulti_SingleInput(t *testing.T) {
	merged := MergeMulti(testDefaults(), Single(Options{KeyName: "only"}))
	require.Len(t, merged, 1)
	assert.Equal(t, "only", merged[0].Name())
}

func TestAllWatchAnyWatch(t *testing.T) {
	tests := []struct {
		name string
		cfgs []Options
		any  bool
		all  bool
	}{
		{name: "empty", cfgs: nil, any: false, all: false},
		{name: "none", cfgs: []Options{{}, {KeyWatch: false}}, any: false, all: false},
		{name: "some", cfgs: []Options{{KeyWatch: true}, {}}, any: true, all: false},
		{name: "all", cfgs: []Options{{KeyWatch: true}, {KeyWatch: true}}, any: true, all: true},
		{name: "non-bool", cfgs: []Options{{KeyWatch: "yes"}}, any: false, all: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.any, AnyWatch(tt.cfgs))
			assert.Equal(t, tt.all, AllWatch(tt.cfgs))
		})
	}
}
