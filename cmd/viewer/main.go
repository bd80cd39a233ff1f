// Command viewer shows a stack of histology slides with translucent label
// surfaces composited by dual depth peeling. Left click picks the object
// under the cursor.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"histo-viewer/core"
	"histo-viewer/internal/config"
	"histo-viewer/internal/logger"
	"histo-viewer/internal/opengl/glapi"
	"histo-viewer/internal/peel"
	"histo-viewer/internal/shaders"
	"histo-viewer/scene"
)

func main() {
	configPath := flag.String("config", "", "TOML settings file")
	labels := flag.String("labels", "", "glTF file with label surfaces (overrides scene.labels_path)")
	dumpConfig := flag.Bool("dump-config", false, "print the effective config as TOML and exit")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
			os.Exit(2)
		}
	}
	if *labels != "" {
		cfg.Scene.LabelsPath = *labels
	}
	if *dumpConfig {
		data, err := config.Encode(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(data)
		return
	}

	if err := logger.Init(cfg.Development); err != nil {
		fmt.Fprintf(os.Stderr, "viewer: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Error("viewer stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	log := logger.Log

	window, err := core.NewWindow(cfg.Window.WindowConfig())
	if err != nil {
		return err
	}
	defer window.Destroy()

	api, err := glapi.New(log)
	if err != nil {
		return err
	}

	registry := shaders.NewRegistry(log.Named("shaders"))
	if err := registry.RegisterBuiltins(); err != nil {
		return err
	}
	defer registry.Delete()

	content, err := buildScene(api, registry, cfg.Scene)
	if err != nil {
		return err
	}
	defer content.destroy()

	camera := scene.NewCamera(35, float32(cfg.Window.Width)/float32(cfg.Window.Height), 0.05, 100)
	camera.Distance = 6

	renderer := peel.New(api,
		peel.WithConfig(cfg.Renderer.PeelConfig()),
		peel.WithLogger(log.Named("peel")),
		peel.WithShaderActivator(registry),
		peel.WithUniformsSource(registry),
		peel.WithSceneRoot(peel.SceneRootFunc(func() scene.Drawable { return content.root })),
		peel.WithOverlayRoot(peel.SceneRootFunc(func() scene.Drawable { return content.overlay })),
		peel.WithDefaultFramebuffer(window),
	)
	if err := renderer.Initialize(); err != nil {
		return err
	}
	defer renderer.Teardown()

	resize := func(vp core.Viewport) {
		if err := renderer.Resize(vp); err != nil {
			log.Warn("resize failed", zap.Stringer("viewport", vp), zap.Error(err))
			return
		}
		camera.UpdateAspectRatio(float32(vp.Width), float32(vp.Height))
	}
	resize(window.Viewport())
	window.OnResize(resize)

	window.OnLeftClick(func(x, y float32) {
		id, depth := renderer.PickObjectIDAndNDCDepth(mgl32.Vec2{x, y})
		if id == peel.NoObject {
			log.Info("pick: background", zap.Float32("ndc_x", x), zap.Float32("ndc_y", y))
			return
		}
		log.Info("pick",
			zap.Uint32("id", id),
			zap.String("object", content.describe(id)),
			zap.Float32("ndc_depth", depth))
	})

	controller := newOrbitController(window)
	pickToggle := &keyToggle{key: core.KeyP}
	queryToggle := &keyToggle{key: core.KeyO}
	labelToggle := &keyToggle{key: core.KeyL}
	gridToggle := &keyToggle{key: core.KeyG}
	fewerPeels := &keyToggle{key: core.KeyLeftBracket}
	morePeels := &keyToggle{key: core.KeyRightBracket}
	debugKeys := []*keyToggle{
		{key: core.Key0}, {key: core.Key1}, {key: core.Key2}, {key: core.Key3}, {key: core.Key4},
	}
	adaptiveRatio := cfg.Renderer.OcclusionRatio
	if adaptiveRatio >= 1 {
		adaptiveRatio = 0.001
	}

	var (
		lastTime   = time.Now()
		frameCount int
	)
	log.Info("viewer running", zap.Stringer("viewport", window.Viewport()))

	for !window.ShouldClose() {
		window.PollEvents()
		if window.IsKeyPressed(core.KeyEscape) {
			break
		}

		// ── Input ─────────────────────────────────────────────────────────────
		rc := renderer.Config()
		if pickToggle.Pressed(window) {
			renderer.SetEnablePointPicking(!rc.PointPicking)
			log.Info("point picking", zap.Bool("enabled", !rc.PointPicking))
		}
		if queryToggle.Pressed(window) {
			ratio := 1.0
			if !rc.UseOcclusionQueries() {
				ratio = adaptiveRatio
			}
			renderer.SetOcclusionRatio(ratio)
			log.Info("occlusion ratio", zap.Float64("ratio", ratio))
		}
		if labelToggle.Pressed(window) {
			content.labels.Visible = !content.labels.Visible
		}
		if gridToggle.Pressed(window) {
			content.grid.Visible = !content.grid.Visible
		}
		if fewerPeels.Pressed(window) {
			renderer.SetMaxNumberOfPeels(rc.MaxPeels - 1)
		}
		if morePeels.Pressed(window) {
			renderer.SetMaxNumberOfPeels(rc.MaxPeels + 1)
		}
		for i, k := range debugKeys {
			if k.Pressed(window) {
				renderer.SetDebugView(peel.DebugView(i))
				log.Info("debug view", zap.Stringer("view", peel.DebugView(i)))
			}
		}
		controller.Update(window, camera)

		// ── Frame ─────────────────────────────────────────────────────────────
		renderer.Update(camera, scene.IdentityFrame())
		if err := renderer.Render(); err != nil {
			return err
		}
		window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(lastTime); elapsed >= time.Second {
			st := renderer.Stats()
			window.SetTitle(statusLine(cfg.Window.Title, frameCount, st, renderer.Config()))
			frameCount = 0
			lastTime = time.Now()
		}
	}
	log.Info("exiting")
	return nil
}
