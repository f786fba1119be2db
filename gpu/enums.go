package gpu

import "fmt"

// CullMode selects which polygon faces are discarded.
type CullMode int

const (
	CullOff CullMode = iota
	CullFront
	CullBack
	CullFrontAndBack
)

var cullModeNames = [...]string{"Off", "Front", "Back", "FrontAndBack"}

func (m CullMode) String() string { return enumName(cullModeNames[:], int(m)) }

// BlendMode selects how fragment colors combine with the framebuffer.
type BlendMode int

const (
	BlendOff BlendMode = iota
	BlendAdditive
	BlendPremultAlpha
	BlendAlphaAdditive
	BlendColor
	BlendAlpha
	BlendModulate
	BlendModulateX2
	BlendScreen
	BlendExclusion
)

var blendModeNames = [...]string{
	"Off", "Additive", "PremultAlpha", "AlphaAdditive", "Color",
	"Alpha", "Modulate", "ModulateX2", "Screen", "Exclusion",
}

func (m BlendMode) String() string { return enumName(blendModeNames[:], int(m)) }

// TestFunction compares a fragment value against a stored one.
type TestFunction int

const (
	FuncNever TestFunction = iota
	FuncEqual
	FuncLess
	FuncLessOrEqual
	FuncGreater
	FuncGreaterOrEqual
	FuncNotEqual
	FuncAlways
)

var testFunctionNames = [...]string{
	"Never", "Equal", "Less", "LessOrEqual", "Greater", "GreaterOrEqual", "NotEqual", "Always",
}

func (f TestFunction) String() string { return enumName(testFunctionNames[:], int(f)) }

// StencilOperation is applied to the stencil buffer after a test.
type StencilOperation int

const (
	StencilKeep StencilOperation = iota
	StencilZero
	StencilReplace
	StencilIncrement
	StencilIncrementWrap
	StencilDecrement
	StencilDecrementWrap
	StencilInvert
)

var stencilOperationNames = [...]string{
	"Keep", "Zero", "Replace", "Increment", "IncrementWrap", "Decrement", "DecrementWrap", "Invert",
}

func (o StencilOperation) String() string { return enumName(stencilOperationNames[:], int(o)) }

func enumName(names []string, i int) string {
	if i >= 0 && i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("%d", i)
}

func enumIndex(names []string, s string) (int, bool) {
	for i, n := range names {
		if n == s {
			return i, true
		}
	}
	return 0, false
}

func ParseCullMode(s string) (CullMode, error) {
	if i, ok := enumIndex(cullModeNames[:], s); ok {
		return CullMode(i), nil
	}
	return 0, fmt.Errorf("gpu: unknown cull mode %q", s)
}

func ParseBlendMode(s string) (BlendMode, error) {
	if i, ok := enumIndex(blendModeNames[:], s); ok {
		return BlendMode(i), nil
	}
	return 0, fmt.Errorf("gpu: unknown blend mode %q", s)
}

func ParseTestFunction(s string) (TestFunction, error) {
	if i, ok := enumIndex(testFunctionNames[:], s); ok {
		return TestFunction(i), nil
	}
	return 0, fmt.Errorf("gpu: unknown test function %q", s)
}

func ParseStencilOperation(s string) (StencilOperation, error) {
	if i, ok := enumIndex(stencilOperationNames[:], s); ok {
		return StencilOperation(i), nil
	}
	return 0, fmt.Errorf("gpu: unknown stencil operation %q", s)
}
