package assets

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"matengine/core"
	"matengine/gpu"
	"matengine/internal/logger"
	"matengine/material"
	"matengine/scene"
	"matengine/shader"
	"matengine/textures"
)

// Parameter names glTF materials are mapped onto. Names the material
// definition does not declare are skipped.
const (
	GLTFDiffuse    = "Diffuse"
	GLTFDiffuseMap = "DiffuseMap"
	GLTFNormalMap  = "NormalMap"
	GLTFShininess  = "Shininess"
	GLTFSpecular   = "Specular"
)

// GLTFResult holds the node trees and textures loaded from a .glb or
// .gltf file.
type GLTFResult struct {
	Roots    []*scene.Node
	Textures []*textures.Texture
}

// LoadGLTF imports the glTF file name. Every glTF material becomes a
// material of the definition defName; PBR metallic-roughness factors
// are approximated onto Phong-style parameters.
func (am *Manager) LoadGLTF(name, defName string) (*GLTFResult, error) {
	path, err := am.Locate(name)
	if err != nil {
		return nil, err
	}
	def, err := am.LoadMaterialDef(defName)
	if err != nil {
		return nil, err
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	result := &GLTFResult{}

	// ── 1. Textures ──────────────────────────────────────────────────────────
	texCache := make([]*textures.Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		tex, err := am.gltfImage(doc, *gt.Source, dir)
		if err != nil {
			logger.Log.Warn("gltf image skipped", zap.String("file", name), zap.Int("image", *gt.Source), zap.Error(err))
			continue
		}
		if tex != nil {
			texCache[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}

	// ── 2. Materials ─────────────────────────────────────────────────────────
	matCache := make([]*material.Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		m, err := gltfMaterial(def, gm, texCache)
		if err != nil {
			return nil, fmt.Errorf("gltf material %d: %w", i, err)
		}
		matCache[i] = m
	}
	var fallback *material.Material

	// ── 3. Mesh primitives ───────────────────────────────────────────────────
	type prim struct {
		mesh *core.Mesh
		mat  *material.Material
	}
	meshPrims := make([][]prim, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, p := range gm.Primitives {
			mesh, err := gltfPrimitive(doc, gm.Name, pi, p)
			if err != nil {
				logger.Log.Warn("gltf primitive skipped",
					zap.String("file", name), zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			core.ComputeTangents(mesh)

			var mat *material.Material
			if p.Material != nil && *p.Material < len(matCache) {
				mat = matCache[*p.Material]
			} else {
				if fallback == nil {
					if fallback, err = material.New(def); err != nil {
						return nil, err
					}
					fallback.SetName("gltf_default")
				}
				mat = fallback
			}
			meshPrims[mi] = append(meshPrims[mi], prim{mesh, mat})
		}
	}

	// ── 4. Nodes ─────────────────────────────────────────────────────────────
	nodes := make([]*scene.Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		nodeName := gn.Name
		if nodeName == "" {
			nodeName = fmt.Sprintf("node_%d", i)
		}
		n := scene.NewNode(nodeName)

		t := gn.TranslationOrDefault()
		n.SetPosition(mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})
		sc := gn.ScaleOrDefault()
		n.SetScale(mgl32.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])})
		r := gn.RotationOrDefault() // x, y, z, w
		n.SetRotation(mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}})

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			switch len(prims) {
			case 0:
			case 1:
				n.SetGeometry(scene.NewGeometry(nodeName, prims[0].mesh, prims[0].mat))
			default:
				for pi, p := range prims {
					n.AddChild(scene.NewGeometryNode(fmt.Sprintf("%s_prim%d", nodeName, pi), p.mesh, p.mat))
				}
			}
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) && nodes[c] != nil {
				nodes[i].AddChild(nodes[c])
			}
		}
	}

	// ── 5. Roots ─────────────────────────────────────────────────────────────
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, ri := range doc.Scenes[*doc.Scene].Nodes {
			if ri < len(nodes) {
				result.Roots = append(result.Roots, nodes[ri])
			}
		}
		return result, nil
	}
	hasParent := make([]bool, len(nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	for i, n := range nodes {
		if !hasParent[i] {
			result.Roots = append(result.Roots, n)
		}
	}
	return result, nil
}

func (am *Manager) gltfImage(doc *gltf.Document, idx int, dir string) (*textures.Texture, error) {
	img := doc.Images[idx]
	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, err
		}
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", idx)
		}
		// the decoder is picked by extension
		if ext := mimeExtension(img.MimeType); ext != "" && filepath.Ext(name) == "" {
			name += ext
		}
		return textures.Decode(name, bytes.NewReader(raw))
	case img.URI != "" && !img.IsEmbeddedResource():
		return am.LoadTexture(filepath.Join(dir, img.URI))
	}
	return nil, nil
}

func mimeExtension(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return ""
}

func gltfMaterial(def *material.MaterialDef, gm *gltf.Material, texCache []*textures.Texture) (*material.Material, error) {
	m, err := material.New(def)
	if err != nil {
		return nil, err
	}
	m.SetName(gm.Name)

	has := func(name string) bool { return def.MaterialParam(name) != nil }
	texture := func(idx int) *textures.Texture {
		if idx >= 0 && idx < len(texCache) {
			return texCache[idx]
		}
		return nil
	}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		if has(GLTFDiffuse) {
			c := core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
			if err := m.SetColor(GLTFDiffuse, c); err != nil {
				return nil, err
			}
		}
		if pbr.BaseColorTexture != nil && has(GLTFDiffuseMap) {
			if tex := texture(pbr.BaseColorTexture.Index); tex != nil {
				if err := m.SetTexture(GLTFDiffuseMap, tex); err != nil {
					return nil, err
				}
			}
		}
		// smooth surfaces get a high shininess, metals a bright specular
		roughness := float32(pbr.RoughnessFactorOrDefault())
		metallic := float32(pbr.MetallicFactorOrDefault())
		if has(GLTFShininess) {
			if err := m.SetFloat(GLTFShininess, (1-roughness)*(1-roughness)*128+1); err != nil {
				return nil, err
			}
		}
		if has(GLTFSpecular) {
			s := metallic * 0.7
			if err := m.SetColor(GLTFSpecular, core.Color{R: s, G: s, B: s, A: 1}); err != nil {
				return nil, err
			}
		}
	}

	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil && has(GLTFNormalMap) {
		if tex := texture(*gm.NormalTexture.Index); tex != nil {
			if err := m.SetTextureParam(GLTFNormalMap, shader.VarTexture2D, tex); err != nil {
				return nil, err
			}
		}
	}

	if gm.AlphaMode == gltf.AlphaBlend {
		m.SetTransparent(true)
		m.AdditionalRenderState().SetBlendMode(gpu.BlendAlpha)
	}
	if gm.DoubleSided {
		m.AdditionalRenderState().SetCullMode(gpu.CullOff)
	}
	return m, nil
}

func gltfPrimitive(doc *gltf.Document, meshName string, idx int, p *gltf.Primitive) (*core.Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, idx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", idx)
	}

	posIdx, ok := p.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if i, ok := p.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[i], nil)
	}
	if i, ok := p.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[i], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, pos := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3(pos),
			Normal:   mgl32.Vec3{0, 1, 0},
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if p.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	mesh := core.NewMesh(name, verts, indices)
	switch p.Mode {
	case gltf.PrimitiveLines:
		mesh.DrawMode = core.DrawLines
	case gltf.PrimitivePoints:
		mesh.DrawMode = core.DrawPoints
	}
	return mesh, nil
}
