package gaim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/gaim/internal/core/observability/log"
)

func newRuntime(opts ...Option) *Runtime {
	return New(append([]Option{WithLogger(log.Nop())}, opts...)...)
}

func TestHealthComponentScenario(t *testing.T) {
	rt := newRuntime()
	var setups []*Entity
	rt.C("health", func(e *Entity) { setups = append(setups, e) })

	a := rt.E("health")
	require.Len(t, setups, 1)
	assert.Same(t, a, setups[0])

	b := rt.Entity("health,armor")
	require.Len(t, setups, 2)
	assert.Same(t, b, setups[1])
	assert.Equal(t, []string{"health", "armor"}, b.Co())
}

func TestAliasesBehaveLikeLongForms(t *testing.T) {
	rt := newRuntime()
	rt.Entity("a")
	rt.E("a,b")

	assert.Equal(t, rt.Find("a"), rt.F("a"))
	assert.Equal(t, rt.Find(Wildcard), rt.F("*"))
	assert.Len(t, rt.F("b"), 1)

	var long, short int
	assert.Same(t, rt, rt.Subscribe("ev", "a", func(*Entity, ...any) error { long++; return nil }))
	assert.Same(t, rt, rt.CS("ev", "a", func(*Entity, ...any) error { short++; return nil }))
	require.NoError(t, rt.Publish("ev"))
	assert.Equal(t, 2, long)
	assert.Equal(t, 2, short)
}

func TestComponentSetupSubscribesBehaviour(t *testing.T) {
	rt := newRuntime()
	type pos struct{ x int }
	positions := map[EntityID]*pos{}

	rt.Component("mover", func(e *Entity) {
		p := &pos{}
		positions[e.ID()] = p
		e.On("update", func(target *Entity, args ...any) error {
			p.x++
			return nil
		})
	})

	first := rt.Entity("mover")
	second := rt.Entity("mover")
	require.NoError(t, rt.Publish("update", DefaultStep))
	require.NoError(t, first.T("update", DefaultStep))

	assert.Equal(t, 2, positions[first.ID()].x)
	assert.Equal(t, 2, positions[second.ID()].x)
}

func TestRuntimeDispatchOrder(t *testing.T) {
	rt := newRuntime()
	e := rt.Entity("x")
	rt.Entity("x")

	var order []string
	e.On("ev", func(*Entity, ...any) error { order = append(order, "S1"); return nil })
	rt.Subscribe("ev", "x", func(*Entity, ...any) error { order = append(order, "S2"); return nil })
	rt.On("ev", func(*Entity, ...any) error { order = append(order, "S3"); return nil })

	require.NoError(t, rt.Publish("ev"))
	assert.Equal(t, []string{"S1", "S2", "S2", "S3"}, order)
}

func TestInstancesAreIsolated(t *testing.T) {
	one := newRuntime()
	two := newRuntime()
	one.Entity("a")
	one.Entity("a")

	assert.Len(t, one.Find(Wildcard), 2)
	assert.Empty(t, two.Find(Wildcard))
	assert.Equal(t, EntityID(1), two.Entity("a").ID())
}

func TestRunStopFromUpdate(t *testing.T) {
	rt := newRuntime()
	var frames []string
	rt.On("update", func(_ *Entity, args ...any) error {
		frames = append(frames, "update")
		assert.Equal(t, []any{5 * time.Millisecond}, args)
		rt.S()
		return nil
	})
	rt.On("draw", func(*Entity, ...any) error { frames = append(frames, "draw"); return nil })
	rt.On("postdraw", func(*Entity, ...any) error { frames = append(frames, "postdraw"); return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.R(ctx, 5*time.Millisecond))
	assert.Equal(t, []string{"update", "draw", "postdraw"}, frames)
	assert.False(t, rt.Running())
}

func TestRunStopBeforeFirstTick(t *testing.T) {
	rt := newRuntime(WithGamepadSupport(true))
	updates := 0
	rt.On("gamepadSupport", func(*Entity, ...any) error { rt.Stop(); return nil })
	rt.On("update", func(*Entity, ...any) error { updates++; return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.Run(ctx, 100*time.Millisecond))
	assert.Zero(t, updates)
}

func TestPostedInputReachesHandlers(t *testing.T) {
	rt := newRuntime()
	var right []bool
	rt.On("mousedown", func(_ *Entity, args ...any) error {
		right = append(right, args[0].(*MouseEvent).IsRightClick)
		return nil
	})

	require.NoError(t, rt.Post(func() error { return rt.Input().MouseDown(&MouseEvent{Which: 3}) }))
	require.NoError(t, rt.Post(func() error { return rt.Input().MouseDown(&MouseEvent{Which: 1}) }))
	n, err := rt.Loop().Drain()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []bool{true, false}, right)
}

func TestHeldKeyReplay(t *testing.T) {
	rt := newRuntime(WithHeldKeyReplay(true))
	var codes []any
	rt.On("keydown", func(_ *Entity, args ...any) error {
		codes = append(codes, args[1])
		return nil
	})
	rt.On("postdraw", func(*Entity, ...any) error { rt.Stop(); return nil })

	require.NoError(t, rt.Input().KeyDown(&KeyEvent{KeyCode: KEYS.Left}))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.Run(ctx, time.Millisecond))

	assert.Equal(t, []any{KEYS.Left, KEYS.Left}, codes)
}

func TestTickRecoveryOption(t *testing.T) {
	rt := newRuntime(WithTickRecovery(true))
	updates := 0
	rt.On("update", func(*Entity, ...any) error {
		updates++
		if updates == 1 {
			panic("first tick blows up")
		}
		rt.Stop()
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.Run(ctx, time.Millisecond))
	assert.Equal(t, 2, updates)
}

func TestGamepadPressIsOneRisingEdge(t *testing.T) {
	rt := newRuntime(WithGamepadSupport(true))
	rt.Gamepad().Update(0, &GamepadState{Buttons: []float64{1}})

	ticks, presses := 0, 0
	rt.On("gamepad0", func(_ *Entity, args ...any) error {
		cur := args[0].(*GamepadState)
		prev := args[1].(*GamepadState)
		if cur.Buttons[0] == 1 && (prev == nil || prev.Buttons[0] == 0) {
			presses++
		}
		return nil
	})
	rt.On("postdraw", func(*Entity, ...any) error {
		ticks++
		if ticks == 3 {
			rt.Stop()
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, rt.Run(ctx, time.Millisecond))
	assert.Equal(t, 3, ticks)
	assert.Equal(t, 1, presses)
}
