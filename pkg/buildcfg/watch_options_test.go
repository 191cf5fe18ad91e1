package buildcfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWatchOptions_Absent(t *testing.T) {
	opts, err := ParseWatchOptions(nil)
	require.NoError(t, err)
	assert.Nil(t, opts)

	opts, err = Options{}.WatchOptions()
	require.NoError(t, err)
	assert.Nil(t, opts)
}

func TestParseWatchOptions(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want WatchOptions
	}{
		{
			name: "empty",
			raw:  map[string]any{},
			want: WatchOptions{},
		},
		{
			name: "timeout and bool poll",
			raw:  map[string]any{"aggregateTimeout": 300, "poll": true},
			want: WatchOptions{AggregateTimeout: TimeoutMillis(300), Poll: PollBool(true)},
		},
		{
			name: "float timeout and interval poll",
			raw:  map[string]any{"aggregateTimeout": float64(500), "poll": 1000},
			want: WatchOptions{AggregateTimeout: TimeoutMillis(500), Poll: PollInterval(1000)},
		},
		{
			name: "single ignored pattern",
			raw:  map[string]any{"ignored": "**/node_modules"},
			want: WatchOptions{Ignored: []string{"**/node_modules"}},
		},
		{
			name: "ignored list drops empty entries",
			raw:  map[string]any{"ignored": []any{"a", "", "b"}},
			want: WatchOptions{Ignored: []string{"a", "b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWatchOptions(tt.raw)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want.AggregateTimeout, got.AggregateTimeout)
			assert.Equal(t, tt.want.Poll, got.Poll)
			assert.ElementsMatch(t, tt.want.Ignored, got.Ignored)
		})
	}
}

func TestParseWatchOptions_Errors(t *testing.T) {
	_, err := ParseWatchOptions("fast")
	require.Error(t, err)

	_, err = ParseWatchOptions(map[string]any{"aggregateTimeout": "300"})
	require.ErrorContains(t, err, "aggregateTimeout")

	_, err = ParseWatchOptions(map[string]any{"aggregateTimeout": 1.5})
	require.ErrorContains(t, err, "aggregateTimeout")

	_, err = ParseWatchOptions(map[string]any{"poll": "often"})
	require.ErrorContains(t, err, "poll")
}

func TestPollEquality(t *testing.T) {
	assert.Equal(t, PollBool(true), PollBool(true))
	assert.NotEqual(t, PollBool(true), PollBool(false))
	assert.NotEqual(t, PollBool(true), PollInterval(1000))
	assert.NotEqual(t, Poll{}, PollBool(false))
	assert.True(t, Poll{} == Poll{})
}

func TestPollInterval(t *testing.T) {
	assert.Equal(t, time.Second, PollBool(true).Interval(time.Second))
	assert.Equal(t, 250*time.Millisecond, PollInterval(250).Interval(time.Second))
	assert.True(t, PollInterval(250).Enabled())
	assert.False(t, PollBool(false).Enabled())
	assert.False(t, Poll{}.IsSet())
}

func TestTimeout(t *testing.T) {
	var unset Timeout
	_, ok := unset.Millis()
	assert.False(t, ok)
	assert.Equal(t, 300*time.Millisecond, unset.Or(300*time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, TimeoutMillis(50).Or(300*time.Millisecond))
	assert.Equal(t, "50ms", TimeoutMillis(50).String())
}

func TestWatchOptionsMapRoundTrip(t *testing.T) {
	in := WatchOptions{AggregateTimeout: TimeoutMillis(200), Poll: PollInterval(750), Ignored: []string{"dist/**"}}
	out, err := ParseWatchOptions(in.Map())
	require.NoError(t, err)
	assert.Equal(t, in, *out)
}
