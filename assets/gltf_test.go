package assets

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matengine/gpu"
	"matengine/textures"
)

func TestGLTFMaterialMapping(t *testing.T) {
	am := NewManager("testdata")
	def, err := am.LoadMaterialDef(lightingDef)
	require.NoError(t, err)

	base := textures.NewSolid("base", color.RGBA{200, 100, 50, 255})
	normal := textures.NewSolid("normal", color.RGBA{128, 128, 255, 255})
	normalIdx := 1
	gm := &gltf.Material{
		Name:        "metal",
		AlphaMode:   gltf.AlphaBlend,
		DoubleSided: true,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor:  &[4]float64{1, 0.5, 0.25, 0.5},
			BaseColorTexture: &gltf.TextureInfo{Index: 0},
			MetallicFactor:   gltf.Float(1),
			RoughnessFactor:  gltf.Float(0),
		},
		NormalTexture: &gltf.NormalTexture{Index: &normalIdx},
	}

	m, err := gltfMaterial(def, gm, []*textures.Texture{base, normal})
	require.NoError(t, err)
	assert.Equal(t, "metal", m.Name())
	assert.Equal(t, mgl32.Vec4{1, 0.5, 0.25, 0.5}, m.ParamValue(GLTFDiffuse).Vec4())
	assert.Same(t, base, m.ParamValue(GLTFDiffuseMap).Texture())
	assert.Same(t, normal, m.ParamValue(GLTFNormalMap).Texture())
	assert.InDelta(t, 129, m.ParamValue(GLTFShininess).Float(), 1e-4, "a mirror-smooth surface gets the highest shininess")
	assert.InDelta(t, 0.7, m.ParamValue(GLTFSpecular).Vec4().X(), 1e-5)

	assert.True(t, m.IsTransparent())
	assert.Equal(t, gpu.BlendAlpha, m.AdditionalRenderState().BlendMode())
	assert.Equal(t, gpu.CullOff, m.AdditionalRenderState().CullMode())
}

func TestGLTFMaterialSkipsUndeclaredParams(t *testing.T) {
	am := NewManager("testdata")
	def, err := am.LoadMaterialDef(unshadedDef)
	require.NoError(t, err)

	gm := &gltf.Material{
		Name: "plain",
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{Index: 5},
		},
	}
	m, err := gltfMaterial(def, gm, nil)
	require.NoError(t, err)
	assert.Nil(t, m.Param(GLTFDiffuse))
	assert.Nil(t, m.Param(GLTFShininess))
	assert.False(t, m.IsTransparent())
}

func TestLoadGLTFMissingFile(t *testing.T) {
	am := NewManager("testdata")
	_, err := am.LoadGLTF("models/absent.glb", lightingDef)
	assert.ErrorIs(t, err, ErrNotFound)
}
