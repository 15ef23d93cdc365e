package engine

import (
	"errors"
	"time"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/backend"
	"github.com/gogpu/framegraph/debugdraw"
)

// Frame is the per-tick context handed to systems.
type Frame struct {
	// World is the loop's entity world.
	World *World

	// Lines is the immediate line buffer. It is cleared after the frame
	// is submitted; systems redraw their content every tick.
	Lines *debugdraw.Buffer

	// Dims is the window size observed this tick, nil when unavailable.
	Dims *framegraph.Dimensions

	// Elapsed is the time in seconds since the loop started.
	Elapsed float64
}

// System is a per-tick callback. Systems run in registration order.
type System func(*Frame)

// Loop owns one window, one device, and one world, and drives them
// frame by frame: systems first, then the rebuild decision, then graph
// execution.
type Loop struct {
	window Window
	dev    backend.Device
	world  *World

	ctrl  *framegraph.Controller
	lines *debugdraw.Buffer
	group *debugdraw.GroupDesc

	systems []System
	graph   *backend.Graph
	quit    bool

	now   func() time.Time
	start time.Time
}

// NewLoop creates a loop. The device must already be initialized.
func NewLoop(window Window, dev backend.Device, world *World) *Loop {
	return &Loop{
		window: window,
		dev:    dev,
		world:  world,
		ctrl:   framegraph.NewController(),
		lines:  debugdraw.NewBuffer(),
		group:  debugdraw.NewGroupDesc(),
		now:    time.Now,
	}
}

// AddSystem registers a per-tick system.
func (l *Loop) AddSystem(s System) {
	l.systems = append(l.systems, s)
}

// SetLineParams configures debug-line rasterization.
func (l *Loop) SetLineParams(p debugdraw.Params) {
	l.group.Params = p
}

// Quit asks the loop to stop after the current tick.
func (l *Loop) Quit() {
	l.quit = true
}

// Running reports whether the loop will execute another tick.
func (l *Loop) Running() bool {
	return !l.quit
}

// Run ticks until quit, then retires the last graph generation.
func (l *Loop) Run() error {
	l.start = l.now()
	for !l.quit {
		if err := l.Tick(); err != nil {
			l.graph.Retire()
			l.graph = nil
			return err
		}
	}
	l.graph.Retire()
	l.graph = nil
	return nil
}

// Tick executes one frame: poll events, run systems, rebuild the graph
// if the window size has settled on a new value, and execute the current
// generation.
func (l *Loop) Tick() error {
	for _, ev := range l.window.PollEvents() {
		switch {
		case ev.Kind == EventCloseRequested:
			l.quit = true
			return nil
		case ev.Kind == EventKeyDown && ev.Key == KeyEscape:
			l.quit = true
			return nil
		}
	}

	dims := l.window.Dimensions()
	if l.start.IsZero() {
		l.start = l.now()
	}
	frame := &Frame{
		World:   l.world,
		Lines:   l.lines,
		Dims:    dims,
		Elapsed: l.now().Sub(l.start).Seconds(),
	}
	for _, s := range l.systems {
		s(frame)
	}

	// Refresh the draw group before the graph consumes it.
	l.group.Lines = l.lines
	l.group.Static = l.world.Components()
	l.group.Camera, l.group.View = l.world.ActiveView()

	if l.ctrl.ShouldRebuild(dims) && dims != nil {
		if err := l.rebuild(); err != nil {
			return err
		}
	}

	if l.graph != nil {
		if err := l.graph.Run(); err != nil {
			return err
		}
	}
	l.lines.Clear()
	return nil
}

// rebuild builds a fresh description, realizes it, and retires the
// previous generation. A surface that is temporarily unavailable leaves
// the old generation running and the rebuild owed.
func (l *Loop) rebuild() error {
	desc, err := l.ctrl.Build(l.dev, l.group)
	if err != nil {
		if errors.Is(err, framegraph.ErrSurfaceUnavailable) {
			framegraph.Logger().Warn("engine: surface unavailable, keeping previous graph", "err", err)
			return nil
		}
		return err
	}

	next, err := backend.Realize(l.dev, desc)
	if err != nil {
		return err
	}
	l.graph.Retire()
	l.graph = next
	return nil
}
