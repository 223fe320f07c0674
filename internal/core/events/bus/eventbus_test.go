package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/gaim/internal/core/models"
	"github.com/zeusync/gaim/internal/core/observability/log"
)

type testObserver struct {
	publishCount int
	calls        int
	lastErr      error
}

func (o *testObserver) OnPublish(string, []any) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, calls int, err error, _ time.Duration) {
	o.calls += calls
	o.lastErr = err
}

func newTestBus() (*Bus, *models.Store) {
	var store *models.Store
	b := New(func(sel string) []*models.Entity { return store.Find(sel) }, log.Nop())
	store = models.NewStore(b)
	return b, store
}

func TestPublishWithoutSubscriptionsIsNoop(t *testing.T) {
	b, _ := newTestBus()
	require.NoError(t, b.Publish("nothing", 1, 2))
	assert.Empty(t, b.Subscriptions("nothing"))
}

func TestDirectSubscriptionReceivesTargetAndArgs(t *testing.T) {
	b, store := newTestBus()
	e := store.Create("player")

	var gotTarget *models.Entity
	var gotArgs []any
	assert.Same(t, e, e.On("hit", func(target *models.Entity, args ...any) error {
		gotTarget = target
		gotArgs = args
		return nil
	}))

	require.NoError(t, b.Publish("hit", "a", 7))
	assert.Same(t, e, gotTarget)
	assert.Equal(t, []any{"a", 7}, gotArgs)
}

func TestFreeStandingSubscriptionHasNilTarget(t *testing.T) {
	b, _ := newTestBus()
	called := false
	sub := b.Subscribe("tick", func(target *models.Entity, args ...any) error {
		called = true
		assert.Nil(t, target)
		assert.Empty(t, args)
		return nil
	})
	require.NoError(t, b.Publish("tick"))
	assert.True(t, called)
	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, KindDirect, sub.Kind())
	assert.Equal(t, "tick", sub.Event())
}

func TestBroadcastResolvesLiveStore(t *testing.T) {
	b, store := newTestBus()
	first := store.Create("enemy")

	var seen []models.EntityID
	ret := b.SubscribeComponent("update", "enemy", func(target *models.Entity, args ...any) error {
		seen = append(seen, target.ID())
		assert.Equal(t, []any{16 * time.Millisecond}, args)
		return nil
	})
	assert.Same(t, b, ret)

	// created after subscribing, before publishing
	second := store.Create("enemy,boss")
	store.Create("ally")

	require.NoError(t, b.Publish("update", 16*time.Millisecond))
	assert.Equal(t, []models.EntityID{first.ID(), second.ID()}, seen)
}

func TestDispatchOrderAcrossKinds(t *testing.T) {
	b, store := newTestBus()
	store.Create("c")
	store.Create("c")
	owner := store.Create("")

	var order []string
	owner.On("ev", func(*models.Entity, ...any) error { order = append(order, "S1"); return nil })
	b.SubscribeComponent("ev", "c", func(target *models.Entity, _ ...any) error {
		order = append(order, "S2")
		return nil
	})
	b.Subscribe("ev", func(*models.Entity, ...any) error { order = append(order, "S3"); return nil })

	require.NoError(t, b.Publish("ev"))
	assert.Equal(t, []string{"S1", "S2", "S2", "S3"}, order)
}

func TestSubscriptionAddedDuringDispatchIsReached(t *testing.T) {
	b, _ := newTestBus()
	var order []string
	b.Subscribe("ev", func(*models.Entity, ...any) error {
		order = append(order, "first")
		if len(order) == 1 {
			b.Subscribe("ev", func(*models.Entity, ...any) error {
				order = append(order, "late")
				return nil
			})
		}
		return nil
	})

	require.NoError(t, b.Publish("ev"))
	assert.Equal(t, []string{"first", "late"}, order)
}

func TestReentrantPublishIsSynchronous(t *testing.T) {
	b, _ := newTestBus()
	var order []string
	b.Subscribe("outer", func(*models.Entity, ...any) error {
		order = append(order, "outer:start")
		require.NoError(t, b.Publish("inner"))
		order = append(order, "outer:end")
		return nil
	})
	b.Subscribe("inner", func(*models.Entity, ...any) error {
		order = append(order, "inner")
		return nil
	})

	require.NoError(t, b.Publish("outer"))
	assert.Equal(t, []string{"outer:start", "inner", "outer:end"}, order)
}

func TestHandlerErrorAbortsDispatch(t *testing.T) {
	b, store := newTestBus()
	store.Create("x")
	store.Create("x")
	boom := errors.New("boom")

	var calls int
	b.SubscribeComponent("ev", "x", func(*models.Entity, ...any) error {
		calls++
		return boom
	})
	b.Subscribe("ev", func(*models.Entity, ...any) error {
		t.Fatal("must not run after a failing handler")
		return nil
	})

	err := b.Publish("ev")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"ev"`)
	assert.Equal(t, 1, calls)
}

func TestHandlerPanicPropagates(t *testing.T) {
	b, _ := newTestBus()
	b.Subscribe("ev", func(*models.Entity, ...any) error { panic("kaboom") })
	assert.PanicsWithValue(t, "kaboom", func() { _ = b.Publish("ev") })
}

func TestObserverMetricsOptional(t *testing.T) {
	b, store := newTestBus()
	store.Create("a")
	store.Create("a")
	b.SubscribeComponent("e", "a", func(*models.Entity, ...any) error { return nil })

	require.NoError(t, b.Publish("e"))
	m := b.Metrics()
	assert.Zero(t, m.Published)
	assert.Equal(t, uint64(1), m.Subscriptions)
	assert.Equal(t, uint64(1), m.Events)

	obs := &testObserver{}
	b.AddObserver(obs)
	require.NoError(t, b.Publish("e"))
	m = b.Metrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(2), m.HandlerCalls)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 2, obs.calls)

	b.RemoveObserver(obs)
	require.NoError(t, b.Publish("e"))
	assert.Equal(t, 1, obs.publishCount)
}

func TestObserverSeesErrors(t *testing.T) {
	b, _ := newTestBus()
	obs := &testObserver{}
	b.AddObserver(obs)
	b.Subscribe("bad", func(*models.Entity, ...any) error { return errors.New("nope") })

	require.Error(t, b.Publish("bad"))
	assert.Error(t, obs.lastErr)
	assert.Equal(t, uint64(1), b.Metrics().Errors)
}

func TestSubscriptionsSnapshot(t *testing.T) {
	b, store := newTestBus()
	e := store.Create("a")
	e.On("ev", func(*models.Entity, ...any) error { return nil })
	b.SubscribeComponent("ev", "a", func(*models.Entity, ...any) error { return nil })

	subs := b.Subscriptions("ev")
	require.Len(t, subs, 2)
	assert.Same(t, e, subs[0].Owner())
	assert.Equal(t, KindComponent, subs[1].Kind())
	assert.Equal(t, "a", subs[1].Selector())
	assert.NotEqual(t, subs[0].ID(), subs[1].ID())
	assert.ElementsMatch(t, []string{"ev"}, b.Events())
}
