package buildcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Single(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: development
watch: true
watchOptions:
  aggregateTimeout: 300
  ignored: ["dist/**"]
`), 0o600))

	in, err := LoadFile(path)
	require.NoError(t, err)
	require.True(t, IsSingle(in))

	merged := Merge(Options{KeyMode: "none"}, in)
	assert.Equal(t, "development", merged[KeyMode])
	assert.True(t, merged.Watch())

	wo, err := merged.WatchOptions()
	require.NoError(t, err)
	require.NotNil(t, wo)
	assert.Equal(t, TimeoutMillis(300), wo.AggregateTimeout)
	assert.Equal(t, []string{"dist/**"}, wo.Ignored)
}

func TestLoadFile_MultiJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "api"}, {"name": "worker", "watch": true}]`), 0o600))

	in, err := LoadFile(path)
	require.NoError(t, err)
	require.True(t, IsMulti(in))

	merged := MergeMulti(Options{}, in)
	require.Len(t, merged, 2)
	assert.Equal(t, "api", merged[0].Name())
	assert.True(t, merged[1].Watch())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte(`"just a string"`))
	require.Error(t, err)

	_, err = Parse([]byte(`[1, 2]`))
	require.ErrorContains(t, err, "entry 0")

	_, err = Parse([]byte("a: [unclosed"))
	require.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParse_EmptyDocument(t *testing.T) {
	in, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, IsSingle(in))
}

func TestLoadFile_TOML(t *testing.T) {
	dir := t.TempDir()

	single := filepath.Join(dir, "build.toml")
	require.NoError(t, os.WriteFile(single, []byte(`
mode = "production"

[watchOptions]
aggregateTimeout = 250
`), 0o600))

	in, err := LoadFile(single)
	require.NoError(t, err)
	require.True(t, IsSingle(in))
	merged := Merge(Options{}, in)
	assert.Equal(t, "production", merged[KeyMode])
	wo, err := merged.WatchOptions()
	require.NoError(t, err)
	require.NotNil(t, wo)
	assert.Equal(t, TimeoutMillis(250), wo.AggregateTimeout)

	multi := filepath.Join(dir, "targets.TOML")
	require.NoError(t, os.WriteFile(multi, []byte(`
[[targets]]
name = "api"

[[targets]]
name = "worker"
watch = true
`), 0o600))

	in, err = LoadFile(multi)
	require.NoError(t, err)
	require.True(t, IsMulti(in))
	cfgs := MergeMulti(Options{}, in)
	require.Len(t, cfgs, 2)
	assert.Equal(t, "worker", cfgs[1].Name())
	assert.True(t, cfgs[1].Watch())
}

func TestParseTOML_Errors(t *testing.T) {
	_, err := ParseTOML([]byte("mode = "))
	require.Error(t, err)

	_, err = ParseTOML([]byte("targets = [1, 2]"))
	require.ErrorContains(t, err, "entry 0")

	in, err := ParseTOML(nil)
	require.NoError(t, err)
	assert.True(t, IsSingle(in))
}
