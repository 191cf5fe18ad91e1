package buildcfg

// Overlay lays override over defaults one level deep: every top-level key
// in override replaces the default, nested values are replaced wholesale.
// The result is always a fresh map and the defaults it carries are deep
// copies; neither argument is modified.
func Overlay(defaults, override Options) Options {
	out := defaults.Clone()
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Merge produces the final configuration of a single-target input. A
// factory is called once with a deep copy of the defaults and its result is
// used as the override. Multi inputs contribute no override.
func Merge(defaults Options, in Input) Options {
	var override Options
	switch in.kind {
	case KindSingle:
		override = in.single
	case KindSingleFactory:
		override = in.singleFn(defaults.Clone())
	default:
	}
	return Overlay(defaults, override)
}

// MergeMulti produces the final configurations of a multi-target input, in
// order. Each override is laid independently over the same defaults, so
// the outputs share no top-level map. A single input yields one
// configuration.
func MergeMulti(defaults Options, in Input) []Options {
	var overrides []Options
	switch in.kind {
	case KindMulti:
		overrides = in.multi
	case KindMultiFactory:
		overrides = in.multiFn(defaults.Clone())
	case KindSingle, KindSingleFactory:
		return []Options{Merge(defaults, in)}
	default:
	}

	out := make([]Options, 0, len(overrides))
	for _, o := range overrides {
		out = append(out, Overlay(defaults, o))
	}
	return out
}
