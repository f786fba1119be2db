package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"matengine/gpu"
	"matengine/internal/logger"
	"matengine/material"
	"matengine/scene"
	"matengine/shader"
)

// RenderManager drives a gpu.Renderer through one frame: it owns the
// uniform binding state, the forced overrides and the render queues.
type RenderManager struct {
	renderer gpu.Renderer
	bindings *UniformBindingManager
	camera   *scene.Camera

	forcedRenderState *gpu.RenderState
	forcedTechnique   string
	forcedMaterial    *material.Material

	lightBatchSize int
	cullFrustum    bool
	culled         int

	opaque      *GeometryList
	sky         *GeometryList
	transparent *GeometryList
	translucent *GeometryList
	gui         *GeometryList
}

var _ material.RenderManager = (*RenderManager)(nil)

func NewRenderManager(r gpu.Renderer) *RenderManager {
	return &RenderManager{
		renderer:       r,
		bindings:       NewUniformBindingManager(),
		lightBatchSize: material.DefaultSinglePassLightBatchSize,
		opaque:         NewGeometryList(&OpaqueComparator{}),
		sky:            NewGeometryList(nil),
		transparent:    NewGeometryList(&TransparentComparator{}),
		translucent:    NewGeometryList(&TransparentComparator{}),
		gui:            NewGeometryList(nil),
	}
}

func (rm *RenderManager) Renderer() gpu.Renderer                   { return rm.renderer }
func (rm *RenderManager) Bindings() *UniformBindingManager         { return rm.bindings }
func (rm *RenderManager) Camera() *scene.Camera                    { return rm.camera }
func (rm *RenderManager) ForcedRenderState() *gpu.RenderState      { return rm.forcedRenderState }
func (rm *RenderManager) SetForcedRenderState(rs *gpu.RenderState) { rm.forcedRenderState = rs }
func (rm *RenderManager) ForcedTechnique() string                  { return rm.forcedTechnique }
func (rm *RenderManager) ForcedMaterial() *material.Material       { return rm.forcedMaterial }
func (rm *RenderManager) ViewMatrix() mgl32.Mat4                   { return rm.bindings.ViewMatrix() }
func (rm *RenderManager) SinglePassLightBatchSize() int            { return rm.lightBatchSize }
func (rm *RenderManager) FrustumCulling() bool                     { return rm.cullFrustum }

// SetFrustumCulling makes RenderScene skip geometries whose world bound
// lies outside the camera frustum (except sky and gui geometries).
func (rm *RenderManager) SetFrustumCulling(on bool) { rm.cullFrustum = on }

// Culled is the number of geometries skipped by the last RenderScene.
func (rm *RenderManager) Culled() int { return rm.culled }

// SetForcedTechnique makes every geometry render with the named
// technique. Geometries whose material lacks it fall back to the forced
// material, or are skipped. An empty name clears the override.
func (rm *RenderManager) SetForcedTechnique(name string) { rm.forcedTechnique = name }

// SetForcedMaterial makes every geometry render with m. Nil clears it.
func (rm *RenderManager) SetForcedMaterial(m *material.Material) { rm.forcedMaterial = m }

// SetSinglePassLightBatchSize sets how many lights one single-pass draw
// carries. Values below 1 are clamped to 1.
func (rm *RenderManager) SetSinglePassLightBatchSize(n int) {
	rm.lightBatchSize = max(n, 1)
}

// SetCamera makes cam the view for the following draws and resizes the
// viewport to it.
func (rm *RenderManager) SetCamera(cam *scene.Camera) {
	rm.camera = cam
	rm.bindings.SetCamera(cam)
	if cam.Width > 0 && cam.Height > 0 {
		rm.renderer.SetViewport(0, 0, cam.Width, cam.Height)
		rm.bindings.SetViewPort(0, 0, cam.Width, cam.Height)
	}
}

// SetTimer records the frame clock, in seconds.
func (rm *RenderManager) SetTimer(time, tpf float32) { rm.bindings.SetTimer(time, tpf) }

func (rm *RenderManager) UpdateUniformBindings(uniforms []*shader.Uniform) {
	rm.bindings.UpdateUniformBindings(uniforms)
}

func (rm *RenderManager) Statistics() *gpu.Statistics { return rm.renderer.Statistics() }

// ── Drawing ───────────────────────────────────────────────────────────────────

// RenderGeometry draws one geometry, honoring the forced technique and
// the forced material.
func (rm *RenderManager) RenderGeometry(g *scene.Geometry) error {
	rm.bindings.SetWorldMatrix(g.WorldMatrix())

	if rm.forcedTechnique != "" {
		mat := g.Material()
		if mat != nil && mat.MaterialDef().TechniqueDef(rm.forcedTechnique) != nil {
			return rm.renderWithForcedTechnique(g, mat)
		}
		if rm.forcedMaterial != nil {
			return rm.forcedMaterial.Render(g, rm)
		}
		return nil
	}

	mat := g.Material()
	if rm.forcedMaterial != nil {
		mat = rm.forcedMaterial
	}
	if mat == nil {
		return nil
	}
	return mat.Render(g, rm)
}

func (rm *RenderManager) renderWithForcedTechnique(g *scene.Geometry, mat *material.Material) error {
	var prev string
	if t := mat.ActiveTechnique(); t != nil {
		prev = t.Def().Name()
	}
	if err := mat.SelectTechnique(rm.forcedTechnique, rm); err != nil {
		return err
	}

	saved := rm.forcedRenderState
	if rs := mat.ActiveTechnique().Def().ForcedRenderState(); rs != nil {
		rm.forcedRenderState = rs
	}
	err := mat.Render(g, rm)
	rm.forcedRenderState = saved

	// A material that had no technique yet goes back to automatic
	// selection.
	if prev == "" {
		mat.ResetTechnique()
	} else if serr := mat.SelectTechnique(prev, rm); serr != nil {
		err = multierr.Append(err, serr)
	}
	return err
}

// RenderGeometryList draws every geometry in l in order. A geometry that
// fails is logged and skipped; the errors are returned combined.
func (rm *RenderManager) RenderGeometryList(l *GeometryList) error {
	var errs error
	for _, g := range l.Geometries() {
		if err := rm.RenderGeometry(g); err != nil {
			logger.Log.Warn("geometry failed to render",
				zap.String("geometry", g.Name),
				zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", g.Name, err))
		}
	}
	return errs
}

// RenderScene clears the frame and draws s through its camera, bucket
// by bucket.
func (rm *RenderManager) RenderScene(s *scene.Scene) error {
	if s == nil || s.Camera == nil {
		return fmt.Errorf("render scene: no scene or camera")
	}
	rm.SetCamera(s.Camera)
	rm.renderer.SetBackgroundColor(s.Background)
	rm.renderer.ClearBuffers(true, true, true)

	frustum := s.Camera.Frustum()
	rm.culled = 0
	for _, g := range s.Geometries() {
		bucket := g.QueueBucket()
		if rm.cullFrustum && bucket != scene.BucketSky && bucket != scene.BucketGui {
			if box := g.WorldBound(); !box.IntersectsFrustum(&frustum) {
				rm.culled++
				continue
			}
		}
		switch bucket {
		case scene.BucketTransparent:
			rm.transparent.Add(g)
		case scene.BucketTranslucent:
			rm.translucent.Add(g)
		case scene.BucketSky:
			rm.sky.Add(g)
		case scene.BucketGui:
			rm.gui.Add(g)
		default:
			rm.opaque.Add(g)
		}
	}

	var errs error
	for _, q := range []*GeometryList{rm.opaque, rm.sky, rm.transparent, rm.translucent, rm.gui} {
		q.Sort(s.Camera)
		errs = multierr.Append(errs, rm.RenderGeometryList(q))
		q.Clear()
	}
	return errs
}

// Preload selects and compiles the technique of every material in s so
// the first frame does not stall on shader builds.
func (rm *RenderManager) Preload(s *scene.Scene) error {
	if s.Camera != nil {
		rm.SetCamera(s.Camera)
	}
	var errs error
	seen := make(map[*material.Material]bool)
	for _, g := range s.Geometries() {
		mat := g.Material()
		if seen[mat] {
			continue
		}
		seen[mat] = true
		errs = multierr.Append(errs, mat.Preload(rm))
	}
	return errs
}
