// Command matdemo renders a small lit scene from the material assets
// under the configured asset roots.
//
// Controls: drag with the left mouse button to orbit, scroll to zoom,
// M toggles the multi-pass lighting technique, W toggles wireframe,
// Space pauses the animation, F1 logs frame statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"matengine/assets"
	"matengine/config"
	"matengine/core"
	"matengine/internal/logger"
	"matengine/internal/opengl"
	"matengine/light"
	"matengine/platform"
	"matengine/renderer"
	"matengine/scene"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "matdemo:", err)
		os.Exit(1)
	}
}

func run() error {
	settingsPath := flag.String("config", "matdemo.toml", "settings file")
	gltfPath := flag.String("gltf", "", "optional glTF model to add to the scene")
	flag.Parse()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		return err
	}
	if err := logger.Init(settings.Log.Level, settings.Log.Development); err != nil {
		return err
	}
	defer logger.Sync()

	window, err := platform.NewWindow(platform.WindowConfig{
		Width:      settings.Window.Width,
		Height:     settings.Window.Height,
		Title:      settings.Window.Title,
		Resizable:  settings.Window.Resizable,
		VSync:      settings.Window.VSync,
		Fullscreen: settings.Window.Fullscreen,
	})
	if err != nil {
		return err
	}
	defer window.Destroy()

	gl, err := opengl.NewRenderer()
	if err != nil {
		return err
	}
	defer gl.Destroy()
	gl.SetCaps(settings.MaskCaps(gl.Caps()))

	am := assets.NewManager(settings.Assets.Roots...)
	demo, err := buildScene(am, float32(settings.Window.Width)/float32(settings.Window.Height))
	if err != nil {
		return err
	}
	if *gltfPath != "" {
		if err := demo.addGLTF(am, *gltfPath); err != nil {
			return err
		}
	}
	bg := settings.Renderer.Background
	demo.scene.Background = core.Color{R: bg[0], G: bg[1], B: bg[2], A: bg[3]}

	rm := renderer.NewRenderManager(gl)
	rm.SetSinglePassLightBatchSize(settings.Renderer.LightBatchSize)
	rm.SetForcedTechnique(settings.Renderer.ForcedTechnique)
	rm.SetFrustumCulling(settings.Renderer.FrustumCulling)
	if err := rm.Preload(demo.scene); err != nil {
		logger.Log.Warn("preload failed", zap.Error(err))
	}

	changed := make(chan string, 16)
	if settings.Assets.Watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := am.Watch(ctx, func(name string) {
				select {
				case changed <- name:
				default:
				}
			})
			if err != nil {
				logger.Log.Error("asset watcher stopped", zap.Error(err))
			}
		}()
	}

	window.SetScrollCallback(func(_, yoff float64) {
		demo.camera.Zoom(float32(-yoff) * 0.5)
	})

	var (
		in       input
		paused   bool
		animTime float32
		last     = window.Time()
	)
	for !window.ShouldClose() {
		window.PollEvents()
		if window.IsKeyPressed(platform.KeyEscape) {
			break
		}

		now := window.Time()
		tpf := float32(now - last)
		last = now

		if in.pressed(window, platform.KeyM) {
			toggleTechnique(rm, "MultiPass")
		}
		if in.pressed(window, platform.KeyW) {
			toggleTechnique(rm, "Wireframe")
		}
		if in.pressed(window, platform.KeySpace) {
			paused = !paused
		}
		if in.pressed(window, platform.KeyF1) {
			logger.Log.Info("frame statistics", zap.Stringer("stats", rm.Statistics()))
		}
		in.orbit(window, demo.camera)

		select {
		case name := <-changed:
			demo.reload(am, name)
		default:
		}

		if w, h := window.GetFramebufferSize(); w > 0 && h > 0 {
			demo.camera.Resize(w, h)
		}
		if !paused {
			animTime += tpf
			demo.animate(animTime)
		}

		rm.Statistics().Reset()
		rm.SetTimer(float32(now), tpf)
		if err := rm.RenderScene(demo.scene); err != nil {
			logger.Log.Warn("frame rendered with errors", zap.Error(err))
		}
		window.SwapBuffers()
	}
	return nil
}

// toggleTechnique forces name on every material, or clears the override
// when it is already forced.
func toggleTechnique(rm *renderer.RenderManager, name string) {
	if rm.ForcedTechnique() == name {
		name = ""
	}
	rm.SetForcedTechnique(name)
	logger.Log.Info("forced technique", zap.String("technique", name))
}

// input turns held keys into single presses and tracks mouse drags.
type input struct {
	down     map[int]bool
	dragging bool
	lastX    float64
	lastY    float64
}

func (in *input) pressed(w *platform.Window, key int) bool {
	if in.down == nil {
		in.down = make(map[int]bool)
	}
	held := w.IsKeyPressed(key)
	was := in.down[key]
	in.down[key] = held
	return held && !was
}

func (in *input) orbit(w *platform.Window, cam *scene.OrbitCamera) {
	x, y := w.GetCursorPos()
	if !w.IsMouseButtonPressed(platform.MouseButtonLeft) {
		in.dragging = false
		return
	}
	if in.dragging {
		cam.Orbit(float32(in.lastX-x)*0.005, float32(y-in.lastY)*0.005)
	}
	in.dragging = true
	in.lastX, in.lastY = x, y
}

type demoScene struct {
	scene  *scene.Scene
	camera *scene.OrbitCamera

	spinner *scene.Node
	lamp    *light.Point

	// geometries by the material asset they were created from
	materials map[string][]*scene.Geometry
}

func buildScene(am *assets.Manager, aspect float32) (*demoScene, error) {
	d := &demoScene{
		scene:     scene.NewScene(),
		camera:    scene.NewOrbitCamera(mgl32.Vec3{0, 0.5, 0}, 8, mgl32.DegToRad(60), aspect),
		materials: make(map[string][]*scene.Geometry),
	}
	d.scene.SetCamera(&d.camera.Camera)

	ground, err := d.add(am, "ground", core.NewPlane(20, 20, 4), "materials/ground.mat.yaml")
	if err != nil {
		return nil, err
	}
	ground.SetPosition(mgl32.Vec3{0, -1, 0})

	grid, err := d.add(am, "grid", core.NewGrid(20, 20), "materials/grid.mat.yaml")
	if err != nil {
		return nil, err
	}
	grid.SetPosition(mgl32.Vec3{0, -0.99, 0})

	d.spinner, err = d.add(am, "brick box", core.NewBox(1.5), "materials/brick.mat.yaml")
	if err != nil {
		return nil, err
	}

	glass, err := d.add(am, "glass sphere", core.NewSphere(0.8, 32, 16), "materials/glass.mat.yaml")
	if err != nil {
		return nil, err
	}
	glass.SetPosition(mgl32.Vec3{2.2, 0, 0})

	d.scene.AddLight(light.NewAmbient(core.Color{R: 0.15, G: 0.15, B: 0.18, A: 1}))
	d.scene.AddLight(light.NewDirectional(core.Color{R: 0.8, G: 0.8, B: 0.75, A: 1}, mgl32.Vec3{-0.4, -1, -0.3}.Normalize()))
	d.lamp = light.NewPoint(core.Color{R: 1, G: 0.5, B: 0.2, A: 1}, mgl32.Vec3{0, 2, 2}, 8)
	d.scene.AddLight(d.lamp)
	spot := light.NewSpot(core.Color{R: 0.3, G: 0.6, B: 1, A: 1}, mgl32.Vec3{-3, 4, 0}, mgl32.Vec3{0.6, -1, 0}.Normalize())
	d.scene.AddLight(spot)
	return d, nil
}

func (d *demoScene) add(am *assets.Manager, name string, mesh *core.Mesh, matName string) (*scene.Node, error) {
	mat, err := am.LoadMaterial(matName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	n := scene.NewGeometryNode(name, mesh, mat)
	d.scene.AddNode(n)
	d.materials[matName] = append(d.materials[matName], n.Geometry())
	return n, nil
}

func (d *demoScene) addGLTF(am *assets.Manager, name string) error {
	res, err := am.LoadGLTF(name, "matdefs/lighting.matdef.yaml")
	if err != nil {
		return err
	}
	for _, root := range res.Roots {
		root.SetPosition(mgl32.Vec3{-2.5, 0, 0})
		d.scene.AddNode(root)
	}
	return nil
}

// animate spins the box and circles the point light around it.
func (d *demoScene) animate(t float32) {
	d.spinner.SetRotation(mgl32.QuatRotate(t*0.6, mgl32.Vec3{0, 1, 0}))
	d.lamp.Position = mgl32.Vec3{3 * math32.Cos(t), 2, 3 * math32.Sin(t)}
}

// reload replaces the materials of every geometry after an asset on
// disk changed. The manager has already evicted the stale entries.
func (d *demoScene) reload(am *assets.Manager, changed string) {
	for name, geoms := range d.materials {
		for _, g := range geoms {
			mat, err := am.LoadMaterial(name)
			if err != nil {
				logger.Log.Warn("material reload failed",
					zap.String("material", name),
					zap.String("changed", changed),
					zap.Error(err))
				break
			}
			g.SetMaterial(mat)
		}
	}
	logger.Log.Info("assets reloaded", zap.String("changed", changed))
}
