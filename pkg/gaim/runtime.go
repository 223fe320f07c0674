// Package gaim is a small game runtime: entities tagged with components, a
// component-aware event bus, and a fixed-step loop that drives it.
//
// A Runtime is single-threaded. Everything except Post, Stop and Running
// must be called from the goroutine running Run, or before Run starts.
// Hosts on other goroutines feed input through Post.
package gaim

import (
	"context"
	"time"

	"github.com/zeusync/gaim/internal/core/components"
	"github.com/zeusync/gaim/internal/core/events/bus"
	"github.com/zeusync/gaim/internal/core/gamepad"
	"github.com/zeusync/gaim/internal/core/input"
	"github.com/zeusync/gaim/internal/core/loop"
	"github.com/zeusync/gaim/internal/core/models"
	"github.com/zeusync/gaim/internal/core/observability/log"
)

type (
	Entity       = models.Entity
	EntityID     = models.EntityID
	Handler      = models.Handler
	Setup        = components.Setup
	Subscription = bus.Subscription
	Task         = loop.Task
	Logger       = log.Log

	MouseEvent   = input.MouseEvent
	KeyEvent     = input.KeyEvent
	ResizeEvent  = input.ResizeEvent
	GamepadState = gamepad.State
)

// Wildcard matches every entity in Find and Subscribe.
const Wildcard = models.Wildcard

// DefaultStep is the tick interval Run uses for a zero step.
const DefaultStep = loop.DefaultStep

// KEYS holds the arrow key codes.
var KEYS = input.Keys

// NewLogger builds the zap-backed logger used across the runtime.
func NewLogger(level string) Logger {
	return log.New(log.ParseLevel(level))
}

// Runtime owns one game's entities, components, subscriptions and loop.
// Instances share nothing.
type Runtime struct {
	store    *models.Store
	bus      *bus.Bus
	registry *components.Registry
	input    *input.Forwarder
	pad      *gamepad.Hub
	loop     *loop.Loop
	logger   log.Log
}

func New(opts ...Option) *Runtime {
	s := settings{queueSize: loop.DefaultQueueSize}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = log.Provide()
	}

	rt := &Runtime{logger: s.logger}
	rt.bus = bus.New(func(selector string) []*models.Entity {
		return rt.store.Find(selector)
	}, s.logger)
	rt.store = models.NewStore(rt.bus)
	rt.registry = components.NewRegistry(rt.store, s.logger)
	rt.store.OnEntityCreated(rt.registry.Apply)
	rt.input = input.NewForwarder(rt.bus)
	rt.pad = gamepad.NewHub(s.gamepad)

	loopOpts := []loop.Option{
		loop.WithGamepad(rt.pad),
		loop.WithQueueSize(s.queueSize),
		loop.WithLogger(s.logger),
	}
	if s.replayHeldKeys {
		loopOpts = append(loopOpts, loop.WithKeyReplay(rt.input))
	}
	if s.tickRecovery {
		loopOpts = append(loopOpts, loop.WithTickRecovery())
	}
	rt.loop = loop.New(rt.bus, loopOpts...)
	return rt
}

// Entity creates an entity tagged with the comma separated components and
// runs the registered setup of each tag, in order, before returning.
func (rt *Runtime) Entity(components string) *Entity {
	return rt.store.Create(components)
}

// Component registers setup under name and immediately runs it on every
// entity already tagged name. Registering a name again replaces its setup
// and runs the new one on those entities again.
func (rt *Runtime) Component(name string, setup Setup) {
	rt.registry.Register(name, setup)
}

// Subscribe calls handler once per entity tagged component every time event
// is published. Entities are looked up at publish time.
func (rt *Runtime) Subscribe(event, component string, handler Handler) *Runtime {
	rt.bus.SubscribeComponent(event, component, handler)
	return rt
}

// On subscribes a handler that is not tied to any entity.
func (rt *Runtime) On(event string, handler Handler) Subscription {
	return rt.bus.Subscribe(event, handler)
}

// Publish dispatches event synchronously. See bus.Bus.Publish.
func (rt *Runtime) Publish(event string, args ...any) error {
	return rt.bus.Publish(event, args...)
}

// Find returns the entities tagged selector, or every entity for Wildcard.
// The Wildcard result is the runtime's own slice and must not be modified.
func (rt *Runtime) Find(selector string) []*Entity {
	return rt.store.Find(selector)
}

// Run drives the loop until Stop, a failing tick or ctx ends it.
// A zero step means DefaultStep.
func (rt *Runtime) Run(ctx context.Context, step time.Duration) error {
	return rt.loop.Run(ctx, step)
}

// Stop ends the loop after at most one more scheduled tick.
func (rt *Runtime) Stop() {
	rt.loop.Stop()
}

// Running reports whether the loop is running.
func (rt *Runtime) Running() bool {
	return rt.loop.Running()
}

// Post queues a task for the loop goroutine. Safe from any goroutine.
func (rt *Runtime) Post(task Task) error {
	return rt.loop.Post(task)
}

// Input returns the forwarder hosts use to publish input events.
func (rt *Runtime) Input() *input.Forwarder {
	return rt.input
}

// Gamepad returns the hub hosts feed gamepad state into.
func (rt *Runtime) Gamepad() *gamepad.Hub {
	return rt.pad
}

func (rt *Runtime) Bus() *bus.Bus {
	return rt.bus
}

func (rt *Runtime) Loop() *loop.Loop {
	return rt.loop
}

func (rt *Runtime) Logger() Logger {
	return rt.logger
}
