package main

import (
	"time"

	"github.com/zeusync/gaim/internal/core/observability/log"
	"github.com/zeusync/gaim/pkg/gaim"
)

const (
	playerSpeed = 120.0 // units per second
	deadZone    = 0.2
	reportEvery = 300
)

type vec struct{ X, Y float64 }

// world is the sample game: players move with the arrow keys or the left
// stick of their gamepad, right click recenters them and the viewport
// clamps where they can go.
type world struct {
	rt       *gaim.Runtime
	logger   log.Log
	pos      map[gaim.EntityID]*vec
	vel      map[gaim.EntityID]*vec
	bounds   vec
	frames   uint64
	lastDraw []vec
}

func installDemo(rt *gaim.Runtime, players int) *world {
	w := &world{
		rt:     rt,
		logger: rt.Logger().With(log.String("component", "demo")),
		pos:    make(map[gaim.EntityID]*vec),
		vel:    make(map[gaim.EntityID]*vec),
		bounds: vec{X: 800, Y: 600},
	}

	rt.C("position", func(e *gaim.Entity) {
		w.pos[e.ID()] = &vec{X: w.bounds.X / 2, Y: w.bounds.Y / 2}
	})

	rt.C("player", func(e *gaim.Entity) {
		v := &vec{}
		w.vel[e.ID()] = v
		e.On("keydown", func(_ *gaim.Entity, args ...any) error {
			steer(v, args[1].(int), 1)
			return nil
		})
		e.On("keyup", func(_ *gaim.Entity, args ...any) error {
			steer(v, args[1].(int), 0)
			return nil
		})
	})

	rt.CS("update", "player", w.move)
	rt.CS("gamepad0", "player", w.stick)
	rt.CS("mousedown", "position", w.recenter)

	rt.On("resize", func(_ *gaim.Entity, args ...any) error {
		ev := args[0].(*gaim.ResizeEvent)
		w.bounds = vec{X: float64(ev.Width), Y: float64(ev.Height)}
		w.logger.Debug("viewport resized", log.Int("width", ev.Width), log.Int("height", ev.Height))
		return nil
	})
	rt.On("gamepadSupport", func(*gaim.Entity, ...any) error {
		w.logger.Info("gamepad support reported")
		return nil
	})
	rt.On("draw", w.draw)
	rt.On("postdraw", w.report)

	for i := 0; i < players; i++ {
		rt.E("position,player")
	}
	return w
}

// steer sets the axis of an arrow key. Other keys are ignored.
func steer(v *vec, keyCode int, amount float64) {
	switch keyCode {
	case gaim.KEYS.Left:
		v.X = -amount
	case gaim.KEYS.Right:
		v.X = amount
	case gaim.KEYS.Up:
		v.Y = -amount
	case gaim.KEYS.Down:
		v.Y = amount
	}
}

func (w *world) move(e *gaim.Entity, args ...any) error {
	step := args[0].(time.Duration)
	p, v := w.pos[e.ID()], w.vel[e.ID()]
	if p == nil || v == nil {
		return nil
	}
	p.X = clamp(p.X+v.X*playerSpeed*step.Seconds(), w.bounds.X)
	p.Y = clamp(p.Y+v.Y*playerSpeed*step.Seconds(), w.bounds.Y)
	return nil
}

func (w *world) stick(e *gaim.Entity, args ...any) error {
	state, _ := args[0].(*gaim.GamepadState)
	v := w.vel[e.ID()]
	if state == nil || v == nil || len(state.Axes) < 2 {
		return nil
	}
	v.X, v.Y = axis(state.Axes[0]), axis(state.Axes[1])
	return nil
}

func (w *world) recenter(e *gaim.Entity, args ...any) error {
	ev := args[0].(*gaim.MouseEvent)
	if !ev.IsRightClick {
		return nil
	}
	if p := w.pos[e.ID()]; p != nil {
		*p = vec{X: w.bounds.X / 2, Y: w.bounds.Y / 2}
	}
	return nil
}

// draw snapshots the positions in entity order.
func (w *world) draw(*gaim.Entity, ...any) error {
	w.lastDraw = w.lastDraw[:0]
	for _, e := range w.rt.F("position") {
		w.lastDraw = append(w.lastDraw, *w.pos[e.ID()])
	}
	return nil
}

func (w *world) report(*gaim.Entity, ...any) error {
	w.frames++
	if w.frames%reportEvery != 0 {
		return nil
	}
	for i, p := range w.lastDraw {
		w.logger.Debug("position",
			log.Int("player", i),
			log.Float64("x", p.X),
			log.Float64("y", p.Y))
	}
	return nil
}

func axis(v float64) float64 {
	if v > -deadZone && v < deadZone {
		return 0
	}
	return v
}

func clamp(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
