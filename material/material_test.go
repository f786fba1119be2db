package material

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"matengine/export"
	"matengine/gpu"
	"matengine/internal/logger"
	"matengine/shader"
	"matengine/textures"
)

func TestNewAppliesDefinitionDefaults(t *testing.T) {
	m, _ := newTestMaterial(t)

	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, m.ParamValue("Color").Vec4())
	assert.Nil(t, m.Param("Shininess"), "params without a default stay unset")
	assert.True(t, m.ParamValue("ColorMap").IsNil())
	assert.Nil(t, m.ActiveTechnique())
	assert.Equal(t, -1, m.SortID())
}

func TestNewRejectsNilDefinition(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestSelectDefaultTechniqueByCaps(t *testing.T) {
	tests := []struct {
		name string
		rm   *testRenderManager
		mode LightMode
	}{
		{"glsl150", newTestRenderManager(), LightSinglePass},
		{"glsl100 only", newTestRenderManager(gpu.CapGLSL100), LightMultiPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, loader := newTestMaterial(t)
			require.NoError(t, m.SelectTechnique(DefaultTechniqueName, tt.rm))

			tech := m.ActiveTechnique()
			require.NotNil(t, tech)
			assert.Equal(t, tt.mode, tech.Def().LightMode())
			assert.Equal(t, Compiled, tech.State())
			assert.NotNil(t, tech.Shader())
			assert.Equal(t, 1, loader.builds)
		})
	}
}

func TestSelectDefaultTechniqueUnsupported(t *testing.T) {
	m, loader := newTestMaterial(t)
	rm := newTestRenderManager(gpu.CapOpenGL20)

	err := m.SelectTechnique(DefaultTechniqueName, rm)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.Nil(t, m.ActiveTechnique())
	assert.Zero(t, loader.builds)
}

func TestSelectUnknownTechnique(t *testing.T) {
	m, _ := newTestMaterial(t)
	err := m.SelectTechnique("Glow", newTestRenderManager())
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func TestSelectTechniqueMissingCaps(t *testing.T) {
	m, _ := newTestMaterial(t)
	err := m.SelectTechnique("MultiPass", newTestRenderManager(gpu.CapOpenGL20))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSelectTechniqueWithoutDefaults(t *testing.T) {
	def := NewMaterialDef("Bare", newCachingLoader())
	m, err := New(def)
	require.NoError(t, err)
	assert.ErrorIs(t, m.SelectTechnique(DefaultTechniqueName, newTestRenderManager()), ErrIllegalArgument)
}

func TestSelectTechniqueIsIdempotent(t *testing.T) {
	m, loader := newTestMaterial(t)
	rm := newTestRenderManager()

	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))
	tech := m.ActiveTechnique()
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))

	assert.Same(t, tech, m.ActiveTechnique())
	assert.Equal(t, 1, loader.builds)
}

func TestSwitchingTechniquesKeepsInstances(t *testing.T) {
	m, loader := newTestMaterial(t)
	rm := newTestRenderManager()

	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))
	def := m.ActiveTechnique()
	require.NoError(t, m.SelectTechnique("MultiPass", rm))
	assert.Equal(t, "MultiPass", m.ActiveTechnique().Def().Name())
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))

	assert.Same(t, def, m.ActiveTechnique())
	assert.Equal(t, 2, loader.builds)
}

func TestMaterialsWithEqualDefinesShareShader(t *testing.T) {
	loader := newCachingLoader()
	def := testDef(t, loader)
	rm := newTestRenderManager()

	a, err := New(def)
	require.NoError(t, err)
	b, err := New(def)
	require.NoError(t, err)
	require.NoError(t, a.SelectTechnique(DefaultTechniqueName, rm))
	require.NoError(t, b.SelectTechnique(DefaultTechniqueName, rm))

	assert.Same(t, a.ActiveTechnique().Shader(), b.ActiveTechnique().Shader())
	assert.Equal(t, 1, loader.builds)
}

func TestSetParamErrors(t *testing.T) {
	m, _ := newTestMaterial(t)

	assert.ErrorIs(t, m.SetFloat("Color", 1), ErrIllegalArgument, "type mismatch")
	assert.ErrorIs(t, m.SetFloat("Roughness", 1), ErrIllegalArgument, "undefined")
	assert.ErrorIs(t, m.SetTextureParam("ColorMap", shader.VarTextureCubeMap, solidTexture("c")), ErrIllegalArgument)
	assert.ErrorIs(t, m.ClearParam("Roughness"), ErrIllegalArgument)

	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, m.ParamValue("Color").Vec4(), "failed sets change nothing")
}

func TestSetParamNilValueClears(t *testing.T) {
	m, _ := newTestMaterial(t)
	require.NoError(t, m.SetFloat("Shininess", 16))
	require.NoError(t, m.SetParam("Shininess", shader.Value{}))
	assert.Nil(t, m.Param("Shininess"))

	require.NoError(t, m.SetTexture("ColorMap", solidTexture("c")))
	require.NoError(t, m.SetTexture("ColorMap", nil))
	assert.Nil(t, m.TextureParam("ColorMap"))
}

func TestDeprecatedPrefixIsAcceptedWithWarning(t *testing.T) {
	obs, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(obs)
	t.Cleanup(func() { logger.Log = prev })

	m, _ := newTestMaterial(t)
	require.NoError(t, m.SetFloat("m_Shininess", 8))

	assert.Equal(t, float32(8), m.ParamValue("Shininess").Float())
	assert.Nil(t, m.Param("m_Shininess"))
	entries := logs.FilterMessage("material parameter uses a deprecated naming convention").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Shininess", entries[0].ContextMap()["use"])

	require.NoError(t, m.ClearParam("m_Shininess"))
	assert.Nil(t, m.Param("Shininess"))
}

func TestParamsKeepInsertionOrder(t *testing.T) {
	m, _ := newTestMaterial(t)
	require.NoError(t, m.SetBoolean("VertexColor", true))
	require.NoError(t, m.SetFloat("Shininess", 4))

	var names []string
	for _, p := range m.Params() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"Color", "VertexColor", "Shininess"}, names)
}

func TestDefineChangeMarksTechniqueStale(t *testing.T) {
	m, loader := newTestMaterial(t)
	rm := newTestRenderManager()
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))
	tech := m.ActiveTechnique()
	first := tech.Shader()

	_, ok := tech.Defines().Get("COLORMAP")
	assert.False(t, ok)

	require.NoError(t, m.SetTexture("ColorMap", solidTexture("c")))
	assert.Equal(t, Stale, tech.State())
	assert.True(t, tech.NeedReload())
	v, ok := tech.Defines().Get("COLORMAP")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	require.NoError(t, m.Render(newTestGeometry(), rm))
	assert.Equal(t, Compiled, tech.State())
	assert.NotSame(t, first, tech.Shader())
	assert.Equal(t, 2, loader.builds)

	all := tech.Shader().Key().Defines
	_, ok = all.Get("COLORMAP")
	assert.True(t, ok)
	_, ok = all.Get("SINGLE_PASS")
	assert.True(t, ok, "preset defines are part of the key")
}

func TestReloadLeavesPreviousWorldBindUniforms(t *testing.T) {
	m, _ := newTestMaterial(t)
	rm := newTestRenderManager()
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))
	tech := m.ActiveTechnique()
	before := tech.WorldBindUniforms()
	require.Len(t, before, 1)
	first := before[0]
	assert.Same(t, tech.Shader().Uniform("g_WorldViewProjectionMatrix"), first)

	require.NoError(t, m.SetTexture("ColorMap", solidTexture("c")))
	require.NoError(t, m.Render(newTestGeometry(), rm))

	after := tech.WorldBindUniforms()
	require.Len(t, after, 1)
	assert.Same(t, first, before[0], "earlier slice still holds the old shader's uniform")
	assert.NotSame(t, first, after[0])
	assert.Same(t, tech.Shader().Uniform("g_WorldViewProjectionMatrix"), after[0])
}

func TestNonDefineParamKeepsTechniqueCompiled(t *testing.T) {
	m, loader := newTestMaterial(t)
	rm := newTestRenderManager()
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))

	require.NoError(t, m.SetFloat("Shininess", 32))
	tech := m.ActiveTechnique()
	assert.Equal(t, Compiled, tech.State())
	assert.Equal(t, float32(32), tech.Shader().Uniform("m_Shininess").Value().Float())
	assert.Equal(t, 1, loader.builds)
}

func TestClearingDefineParamGoesBackToSharedShader(t *testing.T) {
	m, loader := newTestMaterial(t)
	rm := newTestRenderManager()
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))
	plain := m.ActiveTechnique().Shader()

	require.NoError(t, m.SetBoolean("VertexColor", true))
	require.NoError(t, m.Render(newTestGeometry(), rm))
	require.NoError(t, m.ClearParam("VertexColor"))
	require.NoError(t, m.Render(newTestGeometry(), rm))

	assert.Same(t, plain, m.ActiveTechnique().Shader())
	assert.Equal(t, 2, loader.builds)
}

func TestTextureUnitsAreCompacted(t *testing.T) {
	m, _ := newTestMaterial(t)
	require.NoError(t, m.SetTexture("ColorMap", solidTexture("c")))
	require.NoError(t, m.SetTexture("NormalMap", solidTexture("n")))
	assert.Equal(t, 0, m.TextureParam("ColorMap").Unit())
	assert.Equal(t, 1, m.TextureParam("NormalMap").Unit())

	require.NoError(t, m.ClearParam("ColorMap"))
	assert.Equal(t, 0, m.TextureParam("NormalMap").Unit())

	require.NoError(t, m.SetTexture("ColorMap", solidTexture("c2")))
	assert.Equal(t, 1, m.TextureParam("ColorMap").Unit())

	replacement := solidTexture("n2")
	require.NoError(t, m.SetTexture("NormalMap", replacement))
	assert.Equal(t, 0, m.TextureParam("NormalMap").Unit(), "replacing keeps the unit")
	assert.Same(t, replacement, m.TextureParam("NormalMap").Texture())
}

func TestSortID(t *testing.T) {
	m, _ := newTestMaterial(t)
	rm := newTestRenderManager()
	tex := solidTexture("c")
	require.NoError(t, m.SetTexture("ColorMap", tex))
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))

	s := m.ActiveTechnique().Shader()
	assert.Equal(t, s.ID()*1000+tex.Image.ID%0xff, m.SortID())
}

func TestSortIDFollowsTextureChanges(t *testing.T) {
	m, _ := newTestMaterial(t)
	rm := newTestRenderManager()
	require.NoError(t, m.SetTexture("NormalMap", solidTexture("n")))
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))
	before := m.SortID()

	other := solidTexture("n2")
	require.NoError(t, m.SetTexture("NormalMap", other))
	after := m.SortID()
	assert.NotEqual(t, before, after)
	assert.Equal(t, m.ActiveTechnique().Shader().ID()*1000+other.Image.ID%0xff, after)

	require.NoError(t, m.ClearParam("NormalMap"))
	assert.Equal(t, m.ActiveTechnique().Shader().ID()*1000, m.SortID())
}

func TestSortIDFollowsShaderReload(t *testing.T) {
	m, _ := newTestMaterial(t)
	rm := newTestRenderManager()
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))
	before := m.SortID()

	require.NoError(t, m.SetBoolean("VertexColor", true))
	require.NoError(t, m.Render(newTestGeometry(), rm))

	assert.NotEqual(t, before, m.SortID())
	assert.Equal(t, m.ActiveTechnique().Shader().ID()*1000, m.SortID())
}

func TestCompareIsDescending(t *testing.T) {
	loader := newCachingLoader()
	def := testDef(t, loader)
	rm := newTestRenderManager()

	a, err := New(def)
	require.NoError(t, err)
	b, err := New(def)
	require.NoError(t, err)
	require.NoError(t, b.SetBoolean("VertexColor", true))
	require.NoError(t, a.SelectTechnique(DefaultTechniqueName, rm))
	require.NoError(t, b.SelectTechnique(DefaultTechniqueName, rm))

	require.Greater(t, b.SortID(), a.SortID(), "b's shader was built later")
	assert.Negative(t, b.Compare(a))
	assert.Positive(t, a.Compare(b))
	assert.Zero(t, a.Compare(a))
}

func TestCloneIsIndependent(t *testing.T) {
	m, _ := newTestMaterial(t)
	rm := newTestRenderManager()
	require.NoError(t, m.SetTexture("ColorMap", solidTexture("c")))
	require.NoError(t, m.SetFloat("Shininess", 4))
	m.AdditionalRenderState().SetBlendMode(gpu.BlendAlpha)
	require.NoError(t, m.SelectTechnique(DefaultTechniqueName, rm))

	c := m.Clone()
	assert.True(t, m.ContentEqual(c))
	assert.Nil(t, c.ActiveTechnique(), "clones start without a technique")

	require.NoError(t, c.SetFloat("Shininess", 64))
	c.AdditionalRenderState().SetWireframe(true)
	assert.Equal(t, float32(4), m.ParamValue("Shininess").Float())
	assert.False(t, m.AdditionalRenderState().Wireframe())
	assert.False(t, m.ContentEqual(c))
}

func TestContentEqual(t *testing.T) {
	loader := newCachingLoader()
	def := testDef(t, loader)
	a, err := New(def)
	require.NoError(t, err)
	b, err := New(def)
	require.NoError(t, err)

	assert.True(t, a.ContentEqual(b))
	assert.False(t, a.ContentEqual(nil))

	a.AdditionalRenderState()
	assert.True(t, a.ContentEqual(b), "an empty override equals none")

	a.SetTransparent(true)
	assert.False(t, a.ContentEqual(b))
	b.SetTransparent(true)

	tex := solidTexture("c")
	require.NoError(t, a.SetTexture("ColorMap", tex))
	assert.False(t, a.ContentEqual(b))
	require.NoError(t, b.SetTexture("ColorMap", tex))
	assert.True(t, a.ContentEqual(b))

	other, err := New(testDef(t, loader))
	require.NoError(t, err)
	assert.False(t, a.ContentEqual(other), "different definitions")
}

type fakeAssets struct {
	def      *MaterialDef
	textures map[string]*textures.Texture
}

func (f *fakeAssets) LoadMaterialDef(name string) (*MaterialDef, error) {
	if name != f.def.AssetName() {
		return nil, assert.AnError
	}
	return f.def, nil
}

func (f *fakeAssets) LoadTexture(path string) (*textures.Texture, error) {
	tex, ok := f.textures[path]
	if !ok {
		return nil, assert.AnError
	}
	return tex, nil
}

func TestMaterialCapsuleRoundTrip(t *testing.T) {
	m, _ := newTestMaterial(t)
	m.MaterialDef().SetAssetName("matdefs/lit.matdef.yaml")
	colorMap := solidTexture("c")
	colorMap.Path = "textures/brick.png"
	normalMap := solidTexture("n")
	normalMap.Path = "textures/brick_n.png"
	assets := &fakeAssets{
		def:      m.MaterialDef(),
		textures: map[string]*textures.Texture{colorMap.Path: colorMap, normalMap.Path: normalMap},
	}

	m.SetName("brick")
	m.SetTransparent(true)
	require.NoError(t, m.SetVector4("Color", mgl32.Vec4{0.5, 0.25, 0, 1}))
	require.NoError(t, m.SetFloat("Shininess", 12))
	require.NoError(t, m.SetBoolean("VertexColor", true))
	require.NoError(t, m.SetTexture("ColorMap", colorMap))
	require.NoError(t, m.SetTexture("NormalMap", normalMap))
	m.AdditionalRenderState().SetCullMode(gpu.CullOff)

	oc := export.NewOutputCapsule()
	require.NoError(t, m.Write(oc))
	got, err := ReadMaterial(oc.Capsule(), assets)
	require.NoError(t, err)

	assert.Equal(t, "brick", got.Name())
	assert.True(t, got.ContentEqual(m), "got %v", got)
	assert.Equal(t, 1, got.TextureParam("NormalMap").Unit())
}

func TestMaterialCapsuleKeepsClearedDefaults(t *testing.T) {
	m, _ := newTestMaterial(t)
	m.MaterialDef().SetAssetName("lit")
	require.NotNil(t, m.Param("Color"), "Color has a definition default")
	require.NoError(t, m.ClearParam("Color"))
	require.NoError(t, m.SetFloat("Shininess", 4))

	oc := export.NewOutputCapsule()
	require.NoError(t, m.Write(oc))
	got, err := ReadMaterial(oc.Capsule(), &fakeAssets{def: m.MaterialDef()})
	require.NoError(t, err)

	assert.Nil(t, got.Param("Color"), "a cleared default stays cleared")
	assert.True(t, got.ContentEqual(m))
	assert.Equal(t, []string{"Shininess"}, paramNames(got))
}

func TestMaterialCapsuleKeepsTextureUnits(t *testing.T) {
	m, _ := newTestMaterial(t)
	m.MaterialDef().SetAssetName("lit")
	colorMap := solidTexture("c")
	colorMap.Path = "c.png"
	normalMap := solidTexture("n")
	normalMap.Path = "n.png"
	assets := &fakeAssets{
		def:      m.MaterialDef(),
		textures: map[string]*textures.Texture{colorMap.Path: colorMap, normalMap.Path: normalMap},
	}

	require.NoError(t, m.SetTexture("ColorMap", colorMap))
	require.NoError(t, m.SetTexture("NormalMap", normalMap))
	require.NoError(t, m.ClearParam("ColorMap"))
	require.NoError(t, m.SetTexture("ColorMap", colorMap))
	require.Equal(t, 0, m.TextureParam("NormalMap").Unit())
	require.Equal(t, 1, m.TextureParam("ColorMap").Unit())

	oc := export.NewOutputCapsule()
	require.NoError(t, m.Write(oc))
	got, err := ReadMaterial(oc.Capsule(), assets)
	require.NoError(t, err)

	assert.True(t, got.ContentEqual(m))
	assert.Equal(t, 0, got.TextureParam("NormalMap").Unit())
	assert.Equal(t, 1, got.TextureParam("ColorMap").Unit())

	require.NoError(t, got.ClearParam("NormalMap"))
	assert.Equal(t, 0, got.TextureParam("ColorMap").Unit(), "loaded units compact like set ones")
	require.NoError(t, got.SetTexture("NormalMap", normalMap))
	assert.Equal(t, 1, got.TextureParam("NormalMap").Unit())
}

func TestReadMaterialErrors(t *testing.T) {
	m, _ := newTestMaterial(t)
	oc := export.NewOutputCapsule()
	require.NoError(t, m.Write(oc))
	_, err := ReadMaterial(oc.Capsule(), &fakeAssets{def: m.MaterialDef()})
	assert.ErrorIs(t, err, ErrIllegalArgument, "definition without an asset name")

	m.MaterialDef().SetAssetName("lit")
	tex := solidTexture("c")
	tex.Path = "missing.png"
	require.NoError(t, m.SetTexture("ColorMap", tex))
	oc = export.NewOutputCapsule()
	require.NoError(t, m.Write(oc))
	_, err = ReadMaterial(oc.Capsule(), &fakeAssets{def: m.MaterialDef()})
	assert.Error(t, err)
}

func TestTechniqueDefCapsuleRoundTrip(t *testing.T) {
	td := NewTechniqueDef("Glow")
	require.NoError(t, td.SetShaderFile("glow.vert", "glow.frag", shader.GLSL150, shader.GLSL150))
	td.SetLightMode(LightMultiPass)
	td.SetShadowMode(ShadowPostPass)
	td.AddShaderParamDefine("GlowMap", "HAS_GLOWMAP")
	td.AddShaderPresetDefine("GLOW", shader.Bool(true))
	require.True(t, td.AddWorldParam("WorldViewProjectionMatrix"))
	require.False(t, td.AddWorldParam("Sparkle"))
	rs := gpu.DefaultRenderState()
	rs.SetBlendMode(gpu.BlendAdditive)
	td.SetRenderState(rs)

	oc := export.NewOutputCapsule()
	require.NoError(t, td.Write(oc))
	got := NewTechniqueDef("")
	require.NoError(t, got.Read(oc.Capsule()))

	assert.Equal(t, "Glow", got.Name())
	assert.Equal(t, "glow.vert", got.VertexShaderName())
	assert.Equal(t, shader.GLSL150, got.FragmentShaderLanguage())
	assert.True(t, got.UsesShaders())
	assert.Equal(t, td.RequiredCaps(), got.RequiredCaps())
	assert.Equal(t, LightMultiPass, got.LightMode())
	assert.Equal(t, ShadowPostPass, got.ShadowMode())
	assert.Equal(t, map[string]string{"GlowMap": "HAS_GLOWMAP"}, got.ShaderParamDefines())
	assert.True(t, td.ShaderPresetDefines().Equal(got.ShaderPresetDefines()))
	assert.Equal(t, []shader.UniformBinding{shader.WorldViewProjectionMatrix}, got.WorldBindings())
	require.NotNil(t, got.RenderState())
	assert.True(t, rs.Equal(got.RenderState()))
	assert.Nil(t, got.ForcedRenderState())
}

func TestLightModeNames(t *testing.T) {
	m, err := ParseLightMode("SinglePass")
	require.NoError(t, err)
	assert.Equal(t, LightSinglePass, m)
	assert.Equal(t, "FixedPipeline", LightFixedPipeline.String())

	_, err = ParseLightMode("Deferred")
	assert.Error(t, err)
}

func TestDefinitionTechniqueNames(t *testing.T) {
	def := testDef(t, newCachingLoader())
	assert.Equal(t, []string{"Default", "FixedFunc", "MultiPass"}, def.TechniqueDefNames())
	assert.Len(t, def.DefaultTechniques(), 2)
	assert.Nil(t, def.TechniqueDef(DefaultTechniqueName), "defaults are not looked up by name")
}

func TestAddMaterialParamRejectsBadDefault(t *testing.T) {
	def := NewMaterialDef("Bad", nil)
	err := def.AddMaterialParam(shader.VarFloat, "Alpha", shader.Bool(true), gpu.FixedFuncNone)
	assert.ErrorIs(t, err, ErrIllegalArgument)
}

func paramNames(m *Material) []string {
	var out []string
	for _, p := range m.Params() {
		out = append(out, p.Name())
	}
	return out
}
