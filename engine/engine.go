package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/spinvector/orbit/engine/assets"
	"github.com/spinvector/orbit/engine/config"
	"github.com/spinvector/orbit/engine/core"
	"github.com/spinvector/orbit/engine/platform"
	"github.com/spinvector/orbit/engine/renderer"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	StageUninitialized Stage = iota
	// Engine is currently initializing
	StageInitializing
	// Initialization is complete, the run loop has not started
	StageReady
	// Engine run loop is active
	StageRunning
	// Window lost focus; the clock is stopped
	StagePaused
	// Engine has been torn down
	StageDestroyed
)

type Engine struct {
	currentStage Stage
	cfg          *config.Config
	platform     *platform.Platform
	renderer     *renderer.Renderer
	watcher      *assets.ShaderWatcher
	clock        *core.Clock

	isRunning   bool
	isSuspended bool
	width       uint32
	height      uint32
}

func New(cfg *config.Config) (*Engine, error) {
	p, err := platform.New()
	if err != nil {
		return nil, err
	}

	watcher, err := assets.NewShaderWatcher()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage: StageUninitialized,
		cfg:          cfg,
		platform:     p,
		renderer:     renderer.NewRenderer(p, true, cfg.Renderer.MsaaEnabled, cfg.Renderer.MsaaSamples),
		watcher:      watcher,
		clock:        core.NewClock(),
		isRunning:    false,
		isSuspended:  false,
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = StageInitializing

	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onQuit)
	core.EventRegister(core.EVENT_CODE_MOUSE_WHEEL, e.onMouseWheel)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)
	core.EventRegister(core.EVENT_CODE_FOCUS_CHANGED, e.onFocusChanged)
	core.EventRegister(core.EVENT_CODE_SHADERS_CHANGED, e.onShadersChanged)

	if err := e.platform.Startup(e.cfg.Window.Title,
		e.cfg.Window.X, e.cfg.Window.Y,
		e.cfg.Window.Width, e.cfg.Window.Height); err != nil {
		return err
	}

	if err := e.watcher.Initialize("shaders"); err != nil {
		return err
	}

	if err := e.renderer.Initialize(e.cfg.Window.Title, e.width, e.height); err != nil {
		return err
	}

	e.currentStage = StageReady
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != StageReady {
		return fmt.Errorf("engine is not ready to run")
	}
	e.currentStage = StageRunning
	e.isRunning = true

	e.clock.Reset()
	e.clock.Start()

	for e.isRunning {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}

		e.clock.Tick()
		delta := e.clock.Delta()

		if e.isSuspended || e.clock.Stopped() {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		frameStart := platform.GetAbsoluteTime()

		e.processInput()

		if err := e.renderer.Update(delta); err != nil {
			core.LogError("update failed, shutting down: %s", err)
			e.isRunning = false
			break
		}
		if err := e.renderer.Draw(); err != nil {
			core.LogError("draw failed, shutting down: %s", err)
			e.isRunning = false
			break
		}

		core.MetricsUpdate(platform.GetAbsoluteTime() - frameStart)
		if fps, msavg, second := core.MetricsFrame(); second {
			e.platform.SetTitle(fmt.Sprintf("%s    fps: %.0f   mspf: %.2f", e.cfg.Window.Title, fps, msavg))
		}

		// Input state rolls over as the very last step of the frame.
		core.InputUpdate(delta)
	}

	return e.Shutdown()
}

// RequestClose asks the run loop to exit after the current frame.
// Unlike Shutdown it is safe to call from another goroutine; teardown
// still happens on the loop's own thread.
func (e *Engine) RequestClose() {
	e.platform.RequestClose()
}

func (e *Engine) Shutdown() error {
	if e.currentStage == StageDestroyed {
		return nil
	}
	e.currentStage = StageDestroyed
	e.isRunning = false

	if err := e.watcher.Shutdown(); err != nil {
		core.LogWarn(err.Error())
	}
	if err := e.renderer.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

func (e *Engine) onQuit(context core.EventContext) {
	core.LogInfo("application quit requested, shutting down.")
	e.isRunning = false
}

// processInput polls the input state once per frame. Key actions fire
// on the pressed edge, which the previous-frame snapshot provides; the
// drag delta is the cursor's travel since the last rollover.
func (e *Engine) processInput() {
	if core.InputIsKeyDown(core.KEY_ESCAPE) && !core.InputWasKeyDown(core.KEY_ESCAPE) {
		core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}
	if core.InputIsKeyDown(core.KEY_F2) && !core.InputWasKeyDown(core.KEY_F2) {
		e.toggleMsaa()
	}

	x, y := core.InputGetMousePosition()
	px, py := core.InputGetPreviousMousePosition()
	dx := float32(x - px)
	dy := float32(y - py)
	if core.InputIsButtonDown(core.BUTTON_LEFT) {
		e.renderer.Camera().Rotate(dx, dy)
	}
	if core.InputIsButtonDown(core.BUTTON_RIGHT) {
		e.renderer.Camera().Zoom(dy)
	}
}

func (e *Engine) toggleMsaa() {
	changed, err := e.renderer.SetMsaaEnabled(!e.renderer.MsaaEnabled())
	if err != nil {
		if errors.Is(err, core.ErrMsaaUnsupported) {
			core.LogWarn("multisampling is not supported on this device")
			return
		}
		core.LogError("msaa toggle failed: %s", err)
		return
	}
	if changed {
		core.LogInfo("msaa enabled: %t", e.renderer.MsaaEnabled())
	}
}

func (e *Engine) onMouseWheel(context core.EventContext) {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok {
		core.LogError("wrong event payload for event type `%d`", context.Type)
		return
	}
	// One wheel notch zooms as far as a 40-pixel drag.
	e.renderer.Camera().Zoom(float32(me.Scroll) * -40.0)
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event payload for event type `%d`", context.Type)
		return
	}

	width := se.WindowWidth
	height := se.WindowHeight
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height
	core.LogDebug("window resize: %d x %d", width, height)

	// Minimization arrives as a zero-sized client area.
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending.")
		e.isSuspended = true
		e.clock.Stop()
		return
	}

	if e.isSuspended {
		core.LogInfo("window restored, resuming.")
		e.isSuspended = false
		e.clock.Start()
	}
	if err := e.renderer.Resize(width, height); err != nil {
		core.LogError("resize failed: %s", err)
	}
}

func (e *Engine) onFocusChanged(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event payload for event type `%d`", context.Type)
		return
	}

	if se.Focused {
		if e.currentStage == StagePaused {
			e.currentStage = StageRunning
			e.clock.Start()
		}
	} else if e.currentStage == StageRunning {
		e.currentStage = StagePaused
		e.clock.Stop()
	}
}

func (e *Engine) onShadersChanged(context core.EventContext) {
	// Pipelines are built from the embedded SPIR-V; a change on disk
	// only takes effect on restart, so just tell the user.
	if path, ok := context.Data.(string); ok {
		core.LogInfo("shader `%s` changed on disk; restart to pick it up", path)
	}
}
