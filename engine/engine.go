package engine

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-ecs/engine/clock"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
	"github.com/Carmen-Shannon/oxy-ecs/engine/window"
	"go.uber.org/zap"
)

// Engine is the main entry point. It owns the entity context, the system manager and the clock,
// and drives them from the window's event loop.
type Engine interface {
	// Context returns the entity context systems are registered against.
	Context() *ecs.Context

	// Manager returns the system manager.
	Manager() *system.Manager

	// Clock returns the clock producing fixed steps and frames.
	Clock() *clock.Clock

	// Window returns the window, or nil for a headless engine.
	Window() window.Window

	// Profiler returns the profiler fed once per frame while profiling is enabled.
	Profiler() *profiler.Profiler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers the function called at the start of every frame, before the
	// systems run. Use it to turn window input into component changes.
	//
	// Parameters:
	//   - callback: function receiving the scaled frame delta in seconds, or nil
	SetFrameCallback(callback func(delta float64))

	// Step runs one main-loop iteration at time now: it polls window events, advances the clock
	// and runs the resulting ticks and frame.
	//
	// Parameters:
	//   - now: the current wall time
	//
	// Returns:
	//   - int: the fixed steps that ran
	//   - bool: whether a frame ran
	Step(now time.Time) (int, bool)

	// Run starts the systems and steps until the window closes or Quit is called, then destroys
	// every system. It must be called from the goroutine that created the window.
	Run()

	// Quit stops Run after the current iteration. Safe to call multiple times and from any goroutine.
	Quit()
}

type engine struct {
	log   *zap.Logger
	debug bool

	context *ecs.Context
	manager *system.Manager
	clock   *clock.Clock
	window  window.Window

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	onFrame  func(delta float64)
	onResize func(width, height int)

	running     atomic.Bool
	quitChannel chan struct{}
	quitOnce    sync.Once
}

var _ Engine = &engine{}

// NewEngine creates an Engine. Collaborators not supplied through options are created with
// defaults: a context and manager sharing the engine logger, and a clock with a 1/50 s step.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		log:         zap.NewNop(),
		quitChannel: make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.clock == nil {
		e.clock = clock.New()
	}
	if e.context == nil {
		e.context = ecs.NewContext(ecs.WithLogger(e.log.Named("ecs")), ecs.WithDebug(e.debug))
	}
	if e.manager == nil {
		e.manager = system.NewManager(
			system.WithLogger(e.log.Named("systems")),
			system.WithDebug(e.debug),
			system.WithClock(e.clock),
		)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log.Named("profiler")))
	}
	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.onResize != nil {
				e.onResize(width, height)
			}
		})
	}
	return e
}

func (e *engine) Context() *ecs.Context        { return e.context }
func (e *engine) Manager() *system.Manager     { return e.manager }
func (e *engine) Clock() *clock.Clock          { return e.clock }
func (e *engine) Window() window.Window        { return e.window }
func (e *engine) Profiler() *profiler.Profiler { return e.profiler }
func (e *engine) EnableProfiler()              { e.profilingEnabled.Store(true) }
func (e *engine) DisableProfiler()             { e.profilingEnabled.Store(false) }

func (e *engine) SetFrameCallback(callback func(delta float64)) {
	e.onFrame = callback
}

func (e *engine) Step(now time.Time) (int, bool) {
	if e.window != nil && !e.window.PollEvents() {
		e.signalQuit()
		return 0, false
	}
	ticks, frame := e.clock.Update(now)
	if frame && e.onFrame != nil {
		e.onFrame(e.clock.DeltaTime())
	}
	e.manager.Update(ticks, frame)
	if frame && e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return ticks, frame
}

func (e *engine) Run() {
	if !e.running.CompareAndSwap(false, true) {
		e.log.Warn("engine already running")
		return
	}
	defer e.running.Store(false)

	idle := time.NewTimer(time.Hour)
	idle.Stop()
	defer idle.Stop()

	e.manager.Startup()
	e.log.Info("engine started", zap.Int("systems", len(e.manager.Systems())))
	for {
		select {
		case <-e.quitChannel:
			e.shutdown()
			return
		default:
		}
		if _, frame := e.Step(time.Now()); !frame {
			e.wait(idle)
		}
	}
}

// wait sleeps until the clock's next step or capped frame is due, or until Quit.
func (e *engine) wait(idle *time.Timer) {
	d := e.clock.UntilNext()
	if d <= 0 {
		runtime.Gosched()
		return
	}
	idle.Reset(d)
	select {
	case <-idle.C:
	case <-e.quitChannel:
		idle.Stop()
	}
}

func (e *engine) shutdown() {
	e.manager.Destroy()
	if e.window != nil && e.window.IsRunning() {
		if err := e.window.Close(); err != nil {
			e.log.Warn("closing window", zap.Error(err))
		}
	}
	e.log.Info("engine stopped",
		zap.Uint64("frames", e.clock.FrameCount()),
		zap.Uint64("ticks", e.clock.TickCount()),
		zap.Uint64("droppedTicks", e.clock.DroppedTicks()))
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}
