package gpu

import (
	"fmt"

	"matengine/export"
)

// Group is one independently mergeable part of a RenderState. Every
// group has an apply flag: a state used as an override only replaces
// the groups it applies.
type Group int

const (
	GroupPointSprite Group = iota
	GroupWireframe
	GroupCullMode
	GroupDepthWrite
	GroupDepthTest
	GroupColorWrite
	GroupBlendMode
	GroupAlphaTest
	GroupAlphaFallOff
	GroupAlphaFunc
	GroupPolyOffset
	GroupStencil
	GroupDepthFunc
	GroupLineWidth
	groupCount
)

// NumGroups is the number of mergeable groups.
const NumGroups = int(groupCount)

var groupApplyNames = [...]string{
	GroupPointSprite:  "applyPointSprite",
	GroupWireframe:    "applyWireFrame",
	GroupCullMode:     "applyCullMode",
	GroupDepthWrite:   "applyDepthWrite",
	GroupDepthTest:    "applyDepthTest",
	GroupColorWrite:   "applyColorWrite",
	GroupBlendMode:    "applyBlendMode",
	GroupAlphaTest:    "applyAlphaTest",
	GroupAlphaFallOff: "applyAlphaFallOff",
	GroupAlphaFunc:    "applyAlphaFunc",
	GroupPolyOffset:   "applyPolyOffset",
	GroupStencil:      "applyStencilTest",
	GroupDepthFunc:    "applyDepthFunc",
	GroupLineWidth:    "applyLineWidth",
}

func (g Group) String() string {
	if g >= 0 && g < groupCount {
		return groupApplyNames[g][len("apply"):]
	}
	return fmt.Sprintf("Group(%d)", int(g))
}

// StencilState configures the stencil test for both faces.
type StencilState struct {
	Enabled bool

	FrontStencilFail StencilOperation
	FrontDepthFail   StencilOperation
	FrontDepthPass   StencilOperation
	BackStencilFail  StencilOperation
	BackDepthFail    StencilOperation
	BackDepthPass    StencilOperation

	FrontFunc TestFunction
	BackFunc  TestFunction
}

// PolyOffset shifts depth values of rasterized polygons.
type PolyOffset struct {
	Enabled bool
	Factor  float32
	Units   float32
}

// RenderState is a snapshot of fixed-function pipeline state. It is a
// value type: copying the struct copies the state.
type RenderState struct {
	pointSprite  bool
	wireframe    bool
	cullMode     CullMode
	depthWrite   bool
	depthTest    bool
	colorWrite   bool
	blendMode    BlendMode
	alphaTest    bool
	alphaFallOff float32
	alphaFunc    TestFunction
	polyOffset   PolyOffset
	stencil      StencilState
	depthFunc    TestFunction
	lineWidth    float32

	apply [groupCount]bool
}

// DefaultRenderState returns the state used when a technique defines none.
func DefaultRenderState() *RenderState {
	rs := &RenderState{
		cullMode:   CullBack,
		depthWrite: true,
		depthTest:  true,
		colorWrite: true,
		blendMode:  BlendOff,
		alphaFunc:  FuncGreater,
		stencil: StencilState{
			FrontFunc: FuncAlways,
			BackFunc:  FuncAlways,
		},
		depthFunc: FuncLessOrEqual,
		lineWidth: 1,
	}
	for g := range rs.apply {
		rs.apply[g] = true
	}
	rs.apply[GroupStencil] = false
	return rs
}

// NullRenderState disables culling and depth testing.
func NullRenderState() *RenderState {
	rs := DefaultRenderState()
	rs.cullMode = CullOff
	rs.depthTest = false
	return rs
}

// AdditionalRenderState returns a default state that applies nothing,
// the starting point for per-material overrides.
func AdditionalRenderState() *RenderState {
	rs := DefaultRenderState()
	rs.apply = [groupCount]bool{}
	return rs
}

// IsApplied reports whether the group overrides the base when merging.
func (rs *RenderState) IsApplied(g Group) bool { return rs.apply[g] }

func (rs *RenderState) PointSprite() bool       { return rs.pointSprite }
func (rs *RenderState) Wireframe() bool         { return rs.wireframe }
func (rs *RenderState) CullMode() CullMode      { return rs.cullMode }
func (rs *RenderState) DepthWrite() bool        { return rs.depthWrite }
func (rs *RenderState) DepthTest() bool         { return rs.depthTest }
func (rs *RenderState) ColorWrite() bool        { return rs.colorWrite }
func (rs *RenderState) BlendMode() BlendMode    { return rs.blendMode }
func (rs *RenderState) AlphaTest() bool         { return rs.alphaTest }
func (rs *RenderState) AlphaFallOff() float32   { return rs.alphaFallOff }
func (rs *RenderState) AlphaFunc() TestFunction { return rs.alphaFunc }
func (rs *RenderState) PolyOffset() PolyOffset  { return rs.polyOffset }
func (rs *RenderState) Stencil() StencilState   { return rs.stencil }
func (rs *RenderState) DepthFunc() TestFunction { return rs.depthFunc }
func (rs *RenderState) LineWidth() float32      { return rs.lineWidth }

// ── Setters ───────────────────────────────────────────────────────────────────

func (rs *RenderState) SetPointSprite(v bool) {
	rs.pointSprite = v
	rs.apply[GroupPointSprite] = true
}

func (rs *RenderState) SetWireframe(v bool) {
	rs.wireframe = v
	rs.apply[GroupWireframe] = true
}

func (rs *RenderState) SetCullMode(m CullMode) {
	rs.cullMode = m
	rs.apply[GroupCullMode] = true
}

func (rs *RenderState) SetDepthWrite(v bool) {
	rs.depthWrite = v
	rs.apply[GroupDepthWrite] = true
}

func (rs *RenderState) SetDepthTest(v bool) {
	rs.depthTest = v
	rs.apply[GroupDepthTest] = true
}

func (rs *RenderState) SetColorWrite(v bool) {
	rs.colorWrite = v
	rs.apply[GroupColorWrite] = true
}

func (rs *RenderState) SetBlendMode(m BlendMode) {
	rs.blendMode = m
	rs.apply[GroupBlendMode] = true
}

func (rs *RenderState) SetAlphaTest(v bool) {
	rs.alphaTest = v
	rs.apply[GroupAlphaTest] = true
}

func (rs *RenderState) SetAlphaFallOff(v float32) {
	rs.alphaFallOff = v
	rs.apply[GroupAlphaFallOff] = true
}

func (rs *RenderState) SetAlphaFunc(f TestFunction) {
	rs.alphaFunc = f
	rs.apply[GroupAlphaFunc] = true
}

// SetPolyOffset enables polygon offset with the given factor and units.
func (rs *RenderState) SetPolyOffset(factor, units float32) {
	rs.polyOffset = PolyOffset{Enabled: true, Factor: factor, Units: units}
	rs.apply[GroupPolyOffset] = true
}

func (rs *RenderState) DisablePolyOffset() {
	rs.polyOffset = PolyOffset{}
	rs.apply[GroupPolyOffset] = true
}

func (rs *RenderState) SetStencil(s StencilState) {
	rs.stencil = s
	rs.apply[GroupStencil] = true
}

func (rs *RenderState) SetDepthFunc(f TestFunction) {
	rs.depthFunc = f
	rs.apply[GroupDepthFunc] = true
}

func (rs *RenderState) SetLineWidth(w float32) {
	rs.lineWidth = w
	rs.apply[GroupLineWidth] = true
}

// ── Merge ─────────────────────────────────────────────────────────────────────

// CopyMergedTo merges override on top of rs. For each group the result
// takes the override's value when the override applies that group and
// rs's value otherwise. A nil override returns rs itself without
// copying. The result is written to out, allocated when nil, and
// returned. The merged state applies every group rs applies.
func (rs *RenderState) CopyMergedTo(override, out *RenderState) *RenderState {
	if override == nil {
		return rs
	}
	if out == nil {
		out = &RenderState{}
	}
	pick := func(g Group) *RenderState {
		if override.apply[g] {
			return override
		}
		return rs
	}

	out.pointSprite = pick(GroupPointSprite).pointSprite
	out.wireframe = pick(GroupWireframe).wireframe
	out.cullMode = pick(GroupCullMode).cullMode
	out.depthWrite = pick(GroupDepthWrite).depthWrite
	out.depthTest = pick(GroupDepthTest).depthTest
	out.colorWrite = pick(GroupColorWrite).colorWrite
	out.blendMode = pick(GroupBlendMode).blendMode
	out.alphaTest = pick(GroupAlphaTest).alphaTest
	out.alphaFallOff = pick(GroupAlphaFallOff).alphaFallOff
	out.alphaFunc = pick(GroupAlphaFunc).alphaFunc
	out.polyOffset = pick(GroupPolyOffset).polyOffset
	out.stencil = pick(GroupStencil).stencil
	out.depthFunc = pick(GroupDepthFunc).depthFunc
	out.lineWidth = pick(GroupLineWidth).lineWidth

	for g := range out.apply {
		out.apply[g] = rs.apply[g] || override.apply[g]
	}
	return out
}

func (rs *RenderState) Clone() *RenderState {
	c := *rs
	return &c
}

// Equal compares every value and apply flag.
func (rs *RenderState) Equal(o *RenderState) bool {
	if rs == nil || o == nil {
		return rs == o
	}
	return *rs == *o
}

func (rs *RenderState) String() string {
	return fmt.Sprintf("RenderState{cull=%s depthWrite=%t depthTest=%t colorWrite=%t blend=%s wireframe=%t alphaTest=%t offset=%v stencil=%t depthFunc=%s}",
		rs.cullMode, rs.depthWrite, rs.depthTest, rs.colorWrite, rs.blendMode,
		rs.wireframe, rs.alphaTest, rs.polyOffset, rs.stencil.Enabled, rs.depthFunc)
}

// ── Capsule ───────────────────────────────────────────────────────────────────

func (rs *RenderState) Write(oc *export.OutputCapsule) error {
	def := DefaultRenderState()

	oc.WriteBool("pointSprite", rs.pointSprite, def.pointSprite)
	oc.WriteBool("wireframe", rs.wireframe, def.wireframe)
	oc.WriteString("cullMode", rs.cullMode.String(), def.cullMode.String())
	oc.WriteBool("depthWrite", rs.depthWrite, def.depthWrite)
	oc.WriteBool("depthTest", rs.depthTest, def.depthTest)
	oc.WriteBool("colorWrite", rs.colorWrite, def.colorWrite)
	oc.WriteString("blendMode", rs.blendMode.String(), def.blendMode.String())
	oc.WriteBool("alphaTest", rs.alphaTest, def.alphaTest)
	oc.WriteFloat("alphaFallOff", rs.alphaFallOff, def.alphaFallOff)
	oc.WriteString("alphaFunc", rs.alphaFunc.String(), def.alphaFunc.String())
	oc.WriteBool("offsetEnabled", rs.polyOffset.Enabled, def.polyOffset.Enabled)
	oc.WriteFloat("offsetFactor", rs.polyOffset.Factor, def.polyOffset.Factor)
	oc.WriteFloat("offsetUnits", rs.polyOffset.Units, def.polyOffset.Units)

	s, ds := rs.stencil, def.stencil
	oc.WriteBool("stencilTest", s.Enabled, ds.Enabled)
	oc.WriteString("frontStencilStencilFailOperation", s.FrontStencilFail.String(), ds.FrontStencilFail.String())
	oc.WriteString("frontStencilDepthFailOperation", s.FrontDepthFail.String(), ds.FrontDepthFail.String())
	oc.WriteString("frontStencilDepthPassOperation", s.FrontDepthPass.String(), ds.FrontDepthPass.String())
	oc.WriteString("backStencilStencilFailOperation", s.BackStencilFail.String(), ds.BackStencilFail.String())
	oc.WriteString("backStencilDepthFailOperation", s.BackDepthFail.String(), ds.BackDepthFail.String())
	oc.WriteString("backStencilDepthPassOperation", s.BackDepthPass.String(), ds.BackDepthPass.String())
	oc.WriteString("frontStencilFunction", s.FrontFunc.String(), ds.FrontFunc.String())
	oc.WriteString("backStencilFunction", s.BackFunc.String(), ds.BackFunc.String())

	oc.WriteString("depthFunc", rs.depthFunc.String(), def.depthFunc.String())
	oc.WriteFloat("lineWidth", rs.lineWidth, def.lineWidth)

	for g := Group(0); g < groupCount; g++ {
		oc.WriteBool(groupApplyNames[g], rs.apply[g], def.apply[g])
	}
	return nil
}

func (rs *RenderState) Read(ic *export.InputCapsule) error {
	def := DefaultRenderState()
	var err error

	rs.pointSprite = ic.ReadBool("pointSprite", def.pointSprite)
	rs.wireframe = ic.ReadBool("wireframe", def.wireframe)
	rs.cullMode = readEnum(ic, "cullMode", def.cullMode, cullModeNames[:], &err)
	rs.depthWrite = ic.ReadBool("depthWrite", def.depthWrite)
	rs.depthTest = ic.ReadBool("depthTest", def.depthTest)
	rs.colorWrite = ic.ReadBool("colorWrite", def.colorWrite)
	rs.blendMode = readEnum(ic, "blendMode", def.blendMode, blendModeNames[:], &err)
	rs.alphaTest = ic.ReadBool("alphaTest", def.alphaTest)
	rs.alphaFallOff = ic.ReadFloat("alphaFallOff", def.alphaFallOff)
	rs.alphaFunc = readEnum(ic, "alphaFunc", def.alphaFunc, testFunctionNames[:], &err)
	rs.polyOffset = PolyOffset{
		Enabled: ic.ReadBool("offsetEnabled", def.polyOffset.Enabled),
		Factor:  ic.ReadFloat("offsetFactor", def.polyOffset.Factor),
		Units:   ic.ReadFloat("offsetUnits", def.polyOffset.Units),
	}

	ds, ops, fns := def.stencil, stencilOperationNames[:], testFunctionNames[:]
	rs.stencil = StencilState{
		Enabled:          ic.ReadBool("stencilTest", ds.Enabled),
		FrontStencilFail: readEnum(ic, "frontStencilStencilFailOperation", ds.FrontStencilFail, ops, &err),
		FrontDepthFail:   readEnum(ic, "frontStencilDepthFailOperation", ds.FrontDepthFail, ops, &err),
		FrontDepthPass:   readEnum(ic, "frontStencilDepthPassOperation", ds.FrontDepthPass, ops, &err),
		BackStencilFail:  readEnum(ic, "backStencilStencilFailOperation", ds.BackStencilFail, ops, &err),
		BackDepthFail:    readEnum(ic, "backStencilDepthFailOperation", ds.BackDepthFail, ops, &err),
		BackDepthPass:    readEnum(ic, "backStencilDepthPassOperation", ds.BackDepthPass, ops, &err),
		FrontFunc:        readEnum(ic, "frontStencilFunction", ds.FrontFunc, fns, &err),
		BackFunc:         readEnum(ic, "backStencilFunction", ds.BackFunc, fns, &err),
	}

	rs.depthFunc = readEnum(ic, "depthFunc", def.depthFunc, testFunctionNames[:], &err)
	rs.lineWidth = ic.ReadFloat("lineWidth", def.lineWidth)

	for g := Group(0); g < groupCount; g++ {
		rs.apply[g] = ic.ReadBool(groupApplyNames[g], def.apply[g])
	}
	return err
}

// readEnum reads an enum stored by name. Unknown names keep def and
// record the first error in *err.
func readEnum[T ~int](ic *export.InputCapsule, name string, def T, names []string, err *error) T {
	s := ic.ReadString(name, enumName(names, int(def)))
	if i, ok := enumIndex(names, s); ok {
		return T(i)
	}
	if *err == nil {
		*err = fmt.Errorf("gpu: render state %s: unknown value %q", name, s)
	}
	return def
}
