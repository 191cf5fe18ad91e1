package buildcfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	called := false
	single := func(Options) Options { called = true; return nil }
	multi := func(Options) []Options { called = true; return nil }

	tests := []struct {
		name  string
		in    Input
		kind  Kind
		multi bool
	}{
		{name: "literal single", in: Single(Options{}), kind: KindSingle, multi: false},
		{name: "nil single", in: Single(nil), kind: KindSingle, multi: false},
		{name: "factory single", in: SingleFunc(single), kind: KindSingleFactory, multi: false},
		{name: "literal multi", in: Multi(Options{}, Options{}), kind: KindMulti, multi: true},
		{name: "empty multi", in: Multi(), kind: KindMulti, multi: true},
		{name: "factory multi", in: MultiFunc(multi), kind: KindMultiFactory, multi: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.in.Valid())
			assert.Equal(t, tt.kind, tt.in.Kind())
			assert.Equal(t, tt.multi, IsMulti(tt.in))
			assert.Equal(t, !tt.multi, IsSingle(tt.in))
		})
	}

	assert.False(t, called, "classification must not evaluate factories")
}

func TestClassify_ZeroInput(t *testing.T) {
	var in Input
	assert.False(t, in.Valid())
	assert.False(t, IsSingle(in))
	assert.False(t, IsMulti(in))
	assert.Equal(t, "invalid", in.Kind().String())

	assert.False(t, SingleFunc(nil).Valid())
	assert.False(t, MultiFunc(nil).Valid())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "single", KindSingle.String())
	assert.Equal(t, "single factory", KindSingleFactory.String())
	assert.Equal(t, "multi", KindMulti.String())
	assert.Equal(t, "multi factory", KindMultiFactory.String())
}
