package bus

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zeusync/gaim/internal/core/models"
	"github.com/zeusync/gaim/internal/core/observability/log"
)

var _ models.Router = (*Bus)(nil)

// subscription implements Subscription.
type subscription struct {
	id       string
	event    string
	kind     Kind
	owner    *models.Entity
	selector string
	handler  models.Handler
}

func (s *subscription) ID() string            { return s.id }
func (s *subscription) Event() string         { return s.event }
func (s *subscription) Kind() Kind            { return s.kind }
func (s *subscription) Owner() *models.Entity { return s.owner }
func (s *subscription) Selector() string      { return s.selector }

// Bus is a synchronous, in-process event bus keyed by event name.
//
// Subscriptions are appended per event in subscribe order and never removed.
// Publish walks the live list by index, so a subscription added by a
// handler during dispatch is reached by that same dispatch. The bus is not
// safe for concurrent use; callers serialize access through the loop.
type Bus struct {
	// handlers: event -> subscriptions in registration order
	handlers  map[string][]*subscription
	resolve   Resolver
	observers []Observer
	metrics   Metrics
	logger    log.Log
}

// New creates a bus whose broadcast subscriptions resolve through resolve.
func New(resolve Resolver, logger log.Log) *Bus {
	if logger == nil {
		logger = log.Provide()
	}
	return &Bus{
		handlers: make(map[string][]*subscription),
		resolve:  resolve,
		logger:   logger.With(log.String("component", "bus")),
	}
}

// Subscribe registers a free-standing direct subscription. The handler is
// called with a nil target and must capture whatever state it needs.
func (b *Bus) Subscribe(event string, handler models.Handler) Subscription {
	return b.add(&subscription{event: event, kind: KindDirect, handler: handler})
}

// SubscribeEntity registers a direct subscription targeting owner and
// returns owner for chaining.
func (b *Bus) SubscribeEntity(event string, owner *models.Entity, handler models.Handler) *models.Entity {
	b.add(&subscription{event: event, kind: KindDirect, owner: owner, handler: handler})
	return owner
}

// SubscribeComponent registers a broadcast subscription: on every publish
// of event, handler runs once for each entity tagged selector at that moment.
func (b *Bus) SubscribeComponent(event, selector string, handler models.Handler) *Bus {
	b.add(&subscription{event: event, kind: KindComponent, selector: selector, handler: handler})
	return b
}

func (b *Bus) add(s *subscription) *subscription {
	s.id = uuid.NewString()
	b.handlers[s.event] = append(b.handlers[s.event], s)
	b.logger.Debug("subscribed",
		log.String("event", s.event),
		log.String("kind", s.kind.String()),
		log.String("subscription_id", s.id))
	return s
}

// Publish dispatches event to every subscription in registration order and
// returns once all handlers have run. The first handler error stops the
// dispatch and is returned; later subscriptions are not called.
func (b *Bus) Publish(event string, args ...any) error {
	if len(b.handlers[event]) == 0 {
		return nil
	}

	observing := len(b.observers) > 0
	var start time.Time
	if observing {
		start = time.Now()
		for _, obs := range b.observers {
			obs.OnPublish(event, args)
		}
	}

	calls, err := b.dispatch(event, args)

	if observing {
		took := time.Since(start)
		for _, obs := range b.observers {
			obs.OnDelivered(event, calls, err, took)
		}
		b.metrics.Published++
		b.metrics.HandlerCalls += uint64(calls)
		if err != nil {
			b.metrics.Errors++
		}
	}
	return err
}

func (b *Bus) dispatch(event string, args []any) (int, error) {
	calls := 0
	// handlers may append to the list while it is walked
	for i := 0; i < len(b.handlers[event]); i++ {
		s := b.handlers[event][i]
		if s.kind == KindDirect {
			calls++
			if err := s.handler(s.owner, args...); err != nil {
				return calls, errors.Wrapf(err, "event %q", event)
			}
			continue
		}
		for _, target := range b.resolve(s.selector) {
			calls++
			if err := s.handler(target, args...); err != nil {
				return calls, errors.Wrapf(err, "event %q on %q", event, s.selector)
			}
		}
	}
	return calls, nil
}

// Subscriptions returns a snapshot of the subscriptions registered for event.
func (b *Bus) Subscriptions(event string) []Subscription {
	subs := b.handlers[event]
	out := make([]Subscription, len(subs))
	for i, s := range subs {
		out[i] = s
	}
	return out
}

// Events returns the names that have at least one subscription.
func (b *Bus) Events() []string {
	out := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		out = append(out, name)
	}
	return out
}

// AddObserver registers an observer to receive delivery callbacks.
func (b *Bus) AddObserver(obs Observer) {
	b.observers = append(b.observers, obs)
}

// RemoveObserver unregisters a previously added observer.
func (b *Bus) RemoveObserver(obs Observer) {
	for i, o := range b.observers {
		if o == obs {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// Metrics returns a snapshot of the counters.
func (b *Bus) Metrics() Metrics {
	m := b.metrics
	m.Events = uint64(len(b.handlers))
	var subs uint64
	for _, list := range b.handlers {
		subs += uint64(len(list))
	}
	m.Subscriptions = subs
	return m
}
