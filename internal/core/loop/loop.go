package loop

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/zeusync/gaim/internal/core/gamepad"
	"github.com/zeusync/gaim/internal/core/observability/log"
)

// DefaultStep is the tick interval used when Run gets a zero step: 60 ticks
// per second.
const DefaultStep = time.Second / 60

// Events published by the loop.
const (
	EventGamepadSupport = "gamepadSupport"
	EventGamepadPrefix  = "gamepad"
	EventUpdate         = "update"
	EventDraw           = "draw"
	EventPostDraw       = "postdraw"
)

// Publisher is the bus operation the loop drives.
type Publisher interface {
	Publish(event string, args ...any) error
}

// KeyReplayer republishes the keys currently held down.
type KeyReplayer interface {
	Replay() error
}

// Task is a unit of host work executed on the loop goroutine between ticks.
type Task func() error

// Loop drives fixed-interval ticks and serializes host input onto the
// goroutine that runs them.
//
// Every tick publishes, in order: gamepad<slot> for each connected pad,
// replayed keydown events when key replay is enabled, update with the step,
// draw and postdraw. The next tick is armed only after the current one
// returns; missed time is not caught up.
type Loop struct {
	pub    Publisher
	pad    gamepad.Pad
	replay KeyReplayer

	recover   bool
	queueSize int
	tasks     chan Task

	running    atomic.Bool
	active     atomic.Bool
	hasGamepad bool
	step       time.Duration
	ticks      atomic.Uint64

	logger log.Log
}

func New(pub Publisher, opts ...Option) *Loop {
	l := &Loop{
		pub:       pub,
		queueSize: DefaultQueueSize,
		logger:    log.Provide(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.tasks = make(chan Task, l.queueSize)
	l.logger = l.logger.With(log.String("component", "loop"))
	return l
}

// Run starts ticking and blocks until the loop stops.
//
// A zero step means DefaultStep; any other value is used as given. Run
// publishes gamepadSupport once if the pad reports support, then ticks
// immediately and every step after that. It returns nil when a tick finds
// the loop stopped, ctx.Err() when ctx ends, or the error of the tick that
// halted it. Host tasks posted with Post run while Run waits between ticks.
func (l *Loop) Run(ctx context.Context, step time.Duration) error {
	if !l.active.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.active.Store(false)

	if step == 0 {
		step = DefaultStep
	}
	l.step = step
	l.running.Store(true)
	defer l.running.Store(false)

	l.hasGamepad = l.pad != nil && l.pad.Supported()
	l.logger.Info("loop started",
		log.Duration("step", step),
		log.Bool("gamepad", l.hasGamepad),
		log.Bool("key_replay", l.replay != nil))

	if l.hasGamepad {
		if err := l.pub.Publish(EventGamepadSupport); err != nil {
			return err
		}
	}

	for l.running.Load() {
		if err := l.safeTick(); err != nil {
			l.logger.Error("tick failed, loop halted",
				log.Uint64("tick", l.ticks.Load()),
				log.Error(err))
			return err
		}
		if err := l.wait(ctx, step); err != nil {
			return err
		}
	}

	l.logger.Info("loop stopped", log.Uint64("ticks", l.ticks.Load()))
	return nil
}

// Stop clears the running flag. The tick already scheduled still fires,
// sees the flag and ends Run without scheduling another.
func (l *Loop) Stop() {
	l.running.Store(false)
}

// Running reports whether the loop is between Run and Stop.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// Ticks returns the number of ticks executed since construction.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// Step returns the interval of the current or last Run.
func (l *Loop) Step() time.Duration {
	return l.step
}

// Post queues a host task for the loop goroutine. It never blocks and is
// the only Loop method meant to be called from other goroutines besides
// Stop, Running and Ticks.
func (l *Loop) Post(task Task) error {
	select {
	case l.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Drain runs every queued task on the calling goroutine and returns how
// many ran. It refuses while Run is active.
func (l *Loop) Drain() (int, error) {
	if l.active.Load() {
		return 0, ErrAlreadyRunning
	}
	n := 0
	for {
		select {
		case task := <-l.tasks:
			l.runTask(task)
			n++
		default:
			return n, nil
		}
	}
}

func (l *Loop) wait(ctx context.Context, step time.Duration) error {
	timer := time.NewTimer(step)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case task := <-l.tasks:
			l.runTask(task)
		}
	}
}

// runTask isolates host callbacks from the tick chain: their errors and
// panics are logged, never propagated.
func (l *Loop) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("host task panicked", log.Any("panic", r))
		}
	}()
	if err := task(); err != nil {
		l.logger.Warn("host task failed", log.Error(err))
	}
}

func (l *Loop) safeTick() (err error) {
	if !l.recover {
		return l.tick()
	}
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("tick panicked",
				log.Uint64("tick", l.ticks.Load()),
				log.String("panic", fmt.Sprint(r)))
			err = nil
		}
	}()
	if tickErr := l.tick(); tickErr != nil {
		l.logger.Error("tick failed",
			log.Uint64("tick", l.ticks.Load()),
			log.Error(tickErr))
	}
	return nil
}

func (l *Loop) tick() error {
	l.ticks.Add(1)

	if l.hasGamepad {
		for slot, state := range l.pad.States() {
			if state == nil {
				continue
			}
			if err := l.pub.Publish(EventGamepadPrefix+strconv.Itoa(slot), state, l.pad.PreviousState(slot)); err != nil {
				return err
			}
		}
	}

	if l.replay != nil {
		if err := l.replay.Replay(); err != nil {
			return err
		}
	}

	if err := l.pub.Publish(EventUpdate, l.step); err != nil {
		return err
	}
	if err := l.pub.Publish(EventDraw); err != nil {
		return err
	}
	return l.pub.Publish(EventPostDraw)
}
