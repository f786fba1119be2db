package material

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"

	"matengine/core"
	"matengine/gpu"
	"matengine/gpu/nullrenderer"
	"matengine/light"
	"matengine/shader"
	"matengine/textures"
)

// cachingLoader hands out one shader per key, the way the asset
// manager does, and counts the variants it built.
type cachingLoader struct {
	shaders map[string]*shader.Shader
	builds  int
}

func newCachingLoader() *cachingLoader {
	return &cachingLoader{shaders: make(map[string]*shader.Shader)}
}

func (l *cachingLoader) LoadShader(key shader.Key) (*shader.Shader, error) {
	k := key.String()
	if s, ok := l.shaders[k]; ok {
		return s, nil
	}
	s := shader.New(key)
	l.shaders[k] = s
	l.builds++
	return s, nil
}

type testRenderManager struct {
	r         *nullrenderer.Renderer
	forced    *gpu.RenderState
	view      mgl32.Mat4
	batchSize int
	updates   int
}

func newTestRenderManager(caps ...gpu.Caps) *testRenderManager {
	r := nullrenderer.NewGLSL()
	if len(caps) > 0 {
		r = nullrenderer.New(caps...)
	}
	return &testRenderManager{r: r, view: mgl32.Ident4(), batchSize: DefaultSinglePassLightBatchSize}
}

func (rm *testRenderManager) Renderer() gpu.Renderer              { return rm.r }
func (rm *testRenderManager) ForcedRenderState() *gpu.RenderState { return rm.forced }
func (rm *testRenderManager) ViewMatrix() mgl32.Mat4              { return rm.view }
func (rm *testRenderManager) SinglePassLightBatchSize() int       { return rm.batchSize }

func (rm *testRenderManager) UpdateUniformBindings(uniforms []*shader.Uniform) {
	rm.updates++
	for _, u := range uniforms {
		if u.Binding().VarType() == shader.VarMatrix4 {
			u.SetValue(shader.Mat4(mgl32.Ident4()))
		}
	}
}

type testGeometry struct {
	mesh   *core.Mesh
	lights light.List
}

func newTestGeometry(lights ...light.Light) *testGeometry {
	mesh := core.NewMesh("tri", make([]core.Vertex, 3), []uint32{0, 1, 2})
	return &testGeometry{mesh: mesh, lights: light.NewList(lights...)}
}

func (g *testGeometry) Mesh() *core.Mesh            { return g.mesh }
func (g *testGeometry) LodLevel() int               { return 0 }
func (g *testGeometry) WorldLightList() *light.List { return &g.lights }

// testDef builds a lit definition with a GLSL150 default technique, a
// GLSL100 multi-pass fallback and a fixed-function technique.
func testDef(t *testing.T, loader ShaderLoader) *MaterialDef {
	t.Helper()
	def := NewMaterialDef("Lit", loader)
	require.NoError(t, def.AddMaterialParam(shader.VarVector4, "Color", shader.Vec4(mgl32.Vec4{1, 1, 1, 1}), gpu.FixedFuncMaterialColor))
	require.NoError(t, def.AddMaterialParam(shader.VarFloat, "Shininess", shader.Value{}, gpu.FixedFuncMaterialShininess))
	require.NoError(t, def.AddMaterialParam(shader.VarTexture2D, "ColorMap", shader.Value{}, gpu.FixedFuncNone))
	require.NoError(t, def.AddMaterialParam(shader.VarTexture2D, "NormalMap", shader.Value{}, gpu.FixedFuncNone))
	require.NoError(t, def.AddMaterialParam(shader.VarBoolean, "VertexColor", shader.Value{}, gpu.FixedFuncNone))

	single := NewTechniqueDef(DefaultTechniqueName)
	require.NoError(t, single.SetShaderFile("lit.vert", "lit.frag", shader.GLSL150, shader.GLSL150))
	single.SetLightMode(LightSinglePass)
	single.AddShaderParamDefine("ColorMap", "COLORMAP")
	single.AddShaderParamDefine("VertexColor", "VERTEX_COLOR")
	single.AddShaderPresetDefine("SINGLE_PASS", shader.Bool(true))
	single.AddWorldParam("WorldViewProjectionMatrix")
	def.AddTechniqueDef(single)

	multi := NewTechniqueDef(DefaultTechniqueName)
	require.NoError(t, multi.SetShaderFile("lit.vert", "lit.frag", shader.GLSL100, shader.GLSL100))
	multi.SetLightMode(LightMultiPass)
	multi.AddShaderParamDefine("ColorMap", "COLORMAP")
	multi.AddWorldParam("WorldViewProjectionMatrix")
	def.AddTechniqueDef(multi)

	named := NewTechniqueDef("MultiPass")
	require.NoError(t, named.SetShaderFile("lit.vert", "lit.frag", shader.GLSL100, shader.GLSL100))
	named.SetLightMode(LightMultiPass)
	def.AddTechniqueDef(named)

	ff := NewTechniqueDef(FixedFuncTechniqueName)
	ff.SetLightMode(LightFixedPipeline)
	def.AddTechniqueDef(ff)
	return def
}

func newTestMaterial(t *testing.T) (*Material, *cachingLoader) {
	t.Helper()
	loader := newCachingLoader()
	m, err := New(testDef(t, loader))
	require.NoError(t, err)
	return m, loader
}

func solidTexture(name string) *textures.Texture {
	return textures.NewSolid(name, color.RGBA{R: 255, A: 255})
}
