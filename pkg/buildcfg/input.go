package buildcfg

// Kind identifies which of the four accepted shapes an Input holds.
type Kind int

const (
	kindInvalid Kind = iota
	KindSingle
	KindSingleFactory
	KindMulti
	KindMultiFactory
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindSingleFactory:
		return "single factory"
	case KindMulti:
		return "multi"
	case KindMultiFactory:
		return "multi factory"
	default:
		return "invalid"
	}
}

// Factory computes a target configuration from the resolved defaults.
type Factory func(defaults Options) Options

// MultiFactory computes several target configurations from the resolved
// defaults.
type MultiFactory func(defaults Options) []Options

// Input is a caller-supplied build configuration: one target or many, as
// a literal value or as a factory of the defaults. Build one with Single,
// SingleFunc, Multi or MultiFunc; the zero Input is malformed.
type Input struct {
	kind     Kind
	single   Options
	multi    []Options
	singleFn Factory
	multiFn  MultiFactory
}

// Single wraps a literal single-target configuration.
func Single(cfg Options) Input {
	return Input{kind: KindSingle, single: cfg}
}

// SingleFunc wraps a factory producing a single-target configuration.
func SingleFunc(fn Factory) Input {
	if fn == nil {
		return Input{}
	}
	return Input{kind: KindSingleFactory, singleFn: fn}
}

// Multi wraps a literal multi-target configuration.
func Multi(cfgs ...Options) Input {
	return Input{kind: KindMulti, multi: cfgs}
}

// MultiFunc wraps a factory producing a multi-target configuration.
func MultiFunc(fn MultiFactory) Input {
	if fn == nil {
		return Input{}
	}
	return Input{kind: KindMultiFactory, multiFn: fn}
}

// Kind reports the shape of the input without evaluating any factory.
func (in Input) Kind() Kind {
	return in.kind
}

// Valid reports whether the input was built by one of the constructors.
func (in Input) Valid() bool {
	return in.kind != kindInvalid
}

// IsSingle reports whether in describes exactly one build target.
func IsSingle(in Input) bool {
	switch in.kind {
	case KindSingle, KindSingleFactory:
		return true
	default:
		return false
	}
}

// IsMulti reports whether in describes a sequence of build targets. For
// every valid Input, IsMulti(in) == !IsSingle(in).
func IsMulti(in Input) bool {
	switch in.kind {
	case KindMulti, KindMultiFactory:
		return true
	default:
		return false
	}
}
