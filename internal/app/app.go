// Package app runs the globe viewer: window, input, camera, scene and renderer.
package app

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/globe/internal/config"
	"github.com/Faultbox/globe/internal/engine/camera"
	"github.com/Faultbox/globe/internal/engine/debug"
	"github.com/Faultbox/globe/internal/engine/input"
	"github.com/Faultbox/globe/internal/engine/renderer"
	"github.com/Faultbox/globe/internal/engine/window"
	"github.com/Faultbox/globe/internal/logger"
	"github.com/Faultbox/globe/internal/scene"
)

// App is the running viewer.
type App struct {
	config  *config.Config
	running bool
	log     *zap.Logger

	window      *window.Window
	renderer    *renderer.Renderer
	input       *input.Input
	scene       *scene.Scene
	camera      *camera.OrbitCamera
	screenshots *debug.ScreenshotCapture
}

// New opens the window, creates the renderer and spawns the scene for v.
func New(cfg *config.Config, v scene.Variant, loader scene.Loader) (*App, error) {
	a := &App{
		config: cfg,
		log:    logger.Named("app"),
	}
	a.log.Info("initializing viewer",
		zap.String("variant", v.Name),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      "Globe - " + v.Name,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		MSAA:       cfg.Graphics.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer AFTER window, since the OpenGL context must exist
	width, height := a.window.GetDrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:            width,
		Height:           height,
		MSAA:             a.window.MSAA(),
		ShadowResolution: int32(cfg.Graphics.ShadowResolution),
		ShadowFiltering:  v.ShadowFiltering,
	})
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.scene, err = scene.Setup(v, loader)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to set up scene: %w", err)
	}

	rig := a.scene.Camera
	a.camera = camera.NewOrbitCamera(rig.Eye, rig.Target, v.Controller, cfg.CameraSettings())
	a.input = input.New()
	a.screenshots = debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "globe")

	a.log.Info("viewer initialized")
	return a, nil
}

// Run runs the frame loop until the window closes or Escape is pressed.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if a.config.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(a.config.Graphics.FPSLimit)
	}

	a.log.Info("starting frame loop")

	for a.running {
		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastTime).Seconds())
		lastTime = frameStart

		// 1. Input
		if a.input.Update() {
			a.running = false
			break
		}
		a.handleEvents()

		// 2. Camera
		a.updateCamera(dt)

		// 3. Scene
		a.scene.Update(dt)

		// 4. Render and present
		a.renderer.Render(a.scene, a.camera)
		if a.input.IsKeyPressed(sdl.SCANCODE_F12) {
			a.screenshot()
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if a.config.Debug.ShowFPS {
				a.log.Debug("fps",
					zap.Int("count", frameCount),
					zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
					zap.Int("pending_fixups", a.scene.PendingFixups()),
					zap.Int("loading_textures", a.scene.LoadingTextures()),
				)
			}
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if rest := frameBudget - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := a.window.GetDrawableSize()
			a.renderer.Resize(w, h)
		case input.EventKeyDown:
			a.handleKey(event.Key)
		}
	}
}

func (a *App) handleKey(key sdl.Scancode) {
	t := a.scene.Toggles()
	switch key {
	case sdl.SCANCODE_ESCAPE:
		a.running = false
	case sdl.SCANCODE_C:
		if err := a.scene.SetDrawClouds(!t.DrawClouds); err != nil {
			a.log.Warn("cannot show clouds", zap.Error(err))
			return
		}
		a.log.Info("toggled clouds", zap.Bool("on", !t.DrawClouds))
	case sdl.SCANCODE_M:
		a.scene.SetDebugMarkers(!t.DebugMarkers)
		a.log.Info("toggled debug markers", zap.Bool("on", !t.DebugMarkers))
	case sdl.SCANCODE_N:
		a.scene.SetDayTexture(!t.DayTexture)
		a.log.Info("toggled day texture", zap.Bool("day", !t.DayTexture))
	case sdl.SCANCODE_S:
		a.saveToggles()
	}
}

// saveToggles writes the current runtime switches back to the config file.
func (a *App) saveToggles() {
	t := a.scene.Toggles()
	a.config.RememberToggles(t.DrawClouds, t.DebugMarkers, t.DayTexture)
	if err := a.config.Save(); err != nil {
		a.log.Warn("failed to save config", zap.Error(err))
		return
	}
	a.log.Info("saved toggles", zap.String("file", a.config.SavePath()))
}

func (a *App) updateCamera(dt float32) {
	if dx, dy := a.input.Drag(sdl.BUTTON_LEFT); dx != 0 || dy != 0 {
		a.camera.HandleDrag(dx, dy, dt)
	}
	if dx, dy := a.input.Drag(sdl.BUTTON_RIGHT); dx != 0 || dy != 0 {
		a.camera.HandlePan(dx, dy, dt)
	}
	if wheel := a.input.Wheel(); wheel != 0 {
		a.camera.HandleZoom(wheel)
	}
	a.camera.Update()
}

func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	name, err := a.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("file", name))
}

// Close releases the renderer and window.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
