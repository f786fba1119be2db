package gpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matengine/core"
	"matengine/export"
)

func TestDefaultRenderState(t *testing.T) {
	rs := DefaultRenderState()
	assert.Equal(t, CullBack, rs.CullMode())
	assert.True(t, rs.DepthWrite())
	assert.True(t, rs.DepthTest())
	assert.True(t, rs.ColorWrite())
	assert.Equal(t, BlendOff, rs.BlendMode())
	assert.Equal(t, FuncLessOrEqual, rs.DepthFunc())
	assert.Equal(t, float32(1), rs.LineWidth())
	assert.False(t, rs.IsApplied(GroupStencil))
	assert.True(t, rs.IsApplied(GroupCullMode))
}

func TestAdditionalRenderStateAppliesNothing(t *testing.T) {
	rs := AdditionalRenderState()
	for g := range Group(NumGroups) {
		assert.False(t, rs.IsApplied(g), g.String())
	}
	rs.SetBlendMode(BlendAlpha)
	assert.True(t, rs.IsApplied(GroupBlendMode))
}

// stateFields lists every value of rs indexed by Group.
func stateFields(rs *RenderState) []any {
	return []any{
		GroupPointSprite:  rs.PointSprite(),
		GroupWireframe:    rs.Wireframe(),
		GroupCullMode:     rs.CullMode(),
		GroupDepthWrite:   rs.DepthWrite(),
		GroupDepthTest:    rs.DepthTest(),
		GroupColorWrite:   rs.ColorWrite(),
		GroupBlendMode:    rs.BlendMode(),
		GroupAlphaTest:    rs.AlphaTest(),
		GroupAlphaFallOff: rs.AlphaFallOff(),
		GroupAlphaFunc:    rs.AlphaFunc(),
		GroupPolyOffset:   rs.PolyOffset(),
		GroupStencil:      rs.Stencil(),
		GroupDepthFunc:    rs.DepthFunc(),
		GroupLineWidth:    rs.LineWidth(),
	}
}

func TestCopyMergedToTakesOnlyAppliedGroups(t *testing.T) {
	setters := map[Group]func(*RenderState){
		GroupPointSprite:  func(rs *RenderState) { rs.SetPointSprite(true) },
		GroupWireframe:    func(rs *RenderState) { rs.SetWireframe(true) },
		GroupCullMode:     func(rs *RenderState) { rs.SetCullMode(CullOff) },
		GroupDepthWrite:   func(rs *RenderState) { rs.SetDepthWrite(false) },
		GroupDepthTest:    func(rs *RenderState) { rs.SetDepthTest(false) },
		GroupColorWrite:   func(rs *RenderState) { rs.SetColorWrite(false) },
		GroupBlendMode:    func(rs *RenderState) { rs.SetBlendMode(BlendAdditive) },
		GroupAlphaTest:    func(rs *RenderState) { rs.SetAlphaTest(true) },
		GroupAlphaFallOff: func(rs *RenderState) { rs.SetAlphaFallOff(0.5) },
		GroupAlphaFunc:    func(rs *RenderState) { rs.SetAlphaFunc(FuncAlways) },
		GroupPolyOffset:   func(rs *RenderState) { rs.SetPolyOffset(1, 2) },
		GroupStencil: func(rs *RenderState) {
			rs.SetStencil(StencilState{Enabled: true, FrontFunc: FuncEqual, BackFunc: FuncNever})
		},
		GroupDepthFunc: func(rs *RenderState) { rs.SetDepthFunc(FuncAlways) },
		GroupLineWidth: func(rs *RenderState) { rs.SetLineWidth(3) },
	}
	require.Len(t, setters, NumGroups)

	for g := range Group(NumGroups) {
		t.Run(g.String(), func(t *testing.T) {
			base := DefaultRenderState()
			override := AdditionalRenderState()
			setters[g](override)
			require.True(t, override.IsApplied(g))

			baseFields := stateFields(base)
			overrideFields := stateFields(override)
			require.NotEqual(t, baseFields[g], overrideFields[g], "override must differ from the base")

			merged := base.CopyMergedTo(override, nil)
			mergedFields := stateFields(merged)
			for other := range Group(NumGroups) {
				if other == g {
					assert.Equal(t, overrideFields[g], mergedFields[g])
					assert.True(t, merged.IsApplied(g))
					continue
				}
				assert.Equal(t, baseFields[other], mergedFields[other], other.String())
				assert.Equal(t, base.IsApplied(other), merged.IsApplied(other), other.String())
			}
			assert.True(t, base.Equal(DefaultRenderState()), "base is untouched")
		})
	}
}

func TestCopyMergedToNilOverrideReturnsReceiver(t *testing.T) {
	base := DefaultRenderState()
	assert.Same(t, base, base.CopyMergedTo(nil, &RenderState{}))
}

func TestCopyMergedToReusesOut(t *testing.T) {
	base := DefaultRenderState()
	override := AdditionalRenderState()
	override.SetWireframe(true)
	out := &RenderState{}

	got := base.CopyMergedTo(override, out)
	assert.Same(t, out, got)
	assert.True(t, out.Wireframe())
}

func TestCopyMergedToIsIdempotent(t *testing.T) {
	base := DefaultRenderState()
	override := AdditionalRenderState()
	override.SetCullMode(CullOff)
	override.SetPolyOffset(1, 2)

	once := base.CopyMergedTo(override, nil)
	twice := once.CopyMergedTo(override, nil)
	assert.True(t, once.Equal(twice))
}

func TestRenderStateCapsuleRoundTrip(t *testing.T) {
	rs := AdditionalRenderState()
	rs.SetBlendMode(BlendAlpha)
	rs.SetCullMode(CullFront)
	rs.SetDepthWrite(false)
	rs.SetPolyOffset(-1, -1)
	rs.SetStencil(StencilState{
		Enabled:          true,
		FrontStencilFail: StencilReplace,
		BackDepthPass:    StencilInvert,
		FrontFunc:        FuncEqual,
		BackFunc:         FuncNever,
	})
	rs.SetLineWidth(3)

	var buf bytes.Buffer
	require.NoError(t, export.Encode(&buf, rs))
	got := &RenderState{}
	require.NoError(t, export.DecodeInto(&buf, got))

	assert.True(t, rs.Equal(got), "want %v, got %v", rs, got)
}

func TestEnumParsing(t *testing.T) {
	m, err := ParseBlendMode("AlphaAdditive")
	require.NoError(t, err)
	assert.Equal(t, BlendAlphaAdditive, m)

	c, err := ParseCullMode("FrontAndBack")
	require.NoError(t, err)
	assert.Equal(t, CullFrontAndBack, c)

	_, err = ParseTestFunction("Sometimes")
	assert.Error(t, err)
}

func TestCapSet(t *testing.T) {
	s := NewCapSet(CapGLSL100, CapGLSL150)
	assert.True(t, s.Contains(CapGLSL150))
	assert.False(t, s.Contains(CapGLSL330))
	assert.True(t, s.ContainsAll(NewCapSet(CapGLSL100)))
	assert.False(t, s.ContainsAll(NewCapSet(CapGLSL100, CapInstancing)))
	assert.True(t, s.ContainsAll(0), "the empty set is always satisfied")
	assert.Equal(t, 2, s.Len())

	s = s.Remove(CapGLSL150)
	assert.Equal(t, []Caps{CapGLSL100}, s.List())
	assert.Equal(t, []string{"GLSL100"}, s.Names())
}

func TestParseCaps(t *testing.T) {
	s, err := ParseCaps([]string{"GLSL150", " Instancing "})
	require.NoError(t, err)
	assert.Equal(t, NewCapSet(CapGLSL150, CapInstancing), s)

	_, err = ParseCaps([]string{"Teleportation"})
	assert.Error(t, err)
}

func TestStatistics(t *testing.T) {
	var s Statistics
	mesh := core.NewMesh("tri", make([]core.Vertex, 3), []uint32{0, 1, 2})

	s.OnShader(true)
	s.OnShader(false)
	s.OnMeshDrawn(mesh, 0, 4)
	assert.Equal(t, 2, s.Shaders)
	assert.Equal(t, 1, s.ShaderSwitches)
	assert.Equal(t, 4, s.Triangles)
	assert.Equal(t, 12, s.Vertices)

	s.Reset()
	assert.Zero(t, s)
}

func TestFixedFuncBindingNames(t *testing.T) {
	b, ok := ParseFixedFuncBinding("MaterialDiffuse")
	require.True(t, ok)
	assert.Equal(t, "MaterialDiffuse", b.String())

	_, ok = ParseFixedFuncBinding("Sparkle")
	assert.False(t, ok)
}
