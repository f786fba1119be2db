package gpu

import (
	"fmt"

	"matengine/core"
)

// Statistics counts per-frame renderer work.
type Statistics struct {
	Shaders         int
	ShaderSwitches  int
	Textures        int
	TextureSwitches int
	Uniforms        int
	RenderStates    int
	Objects         int
	Triangles       int
	Vertices        int
}

// OnShader records a SetShader call; switched is true when the bound
// program changed.
func (s *Statistics) OnShader(switched bool) {
	s.Shaders++
	if switched {
		s.ShaderSwitches++
	}
}

func (s *Statistics) OnTexture(switched bool) {
	s.Textures++
	if switched {
		s.TextureSwitches++
	}
}

func (s *Statistics) OnUniformSet()  { s.Uniforms++ }
func (s *Statistics) OnRenderState() { s.RenderStates++ }

// OnMeshDrawn records a draw of count instances.
func (s *Statistics) OnMeshDrawn(mesh *core.Mesh, lod, count int) {
	if count < 1 {
		count = 1
	}
	s.Objects++
	s.Triangles += mesh.TriangleCount() * count
	s.Vertices += len(mesh.Vertices) * count
}

// Reset clears every counter, usually at the start of a frame.
func (s *Statistics) Reset() { *s = Statistics{} }

func (s *Statistics) String() string {
	return fmt.Sprintf("objects=%d tris=%d verts=%d shaders=%d/%d textures=%d/%d uniforms=%d states=%d",
		s.Objects, s.Triangles, s.Vertices, s.ShaderSwitches, s.Shaders,
		s.TextureSwitches, s.Textures, s.Uniforms, s.RenderStates)
}
