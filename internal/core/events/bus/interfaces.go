package bus

import (
	"time"

	"github.com/zeusync/gaim/internal/core/models"
)

// Resolver resolves a component selector against live entity state. The
// bus calls it on every broadcast dispatch and never caches the result.
type Resolver func(selector string) []*models.Entity

// Kind tells direct subscriptions from component-broadcast ones.
type Kind uint8

const (
	// KindDirect subscriptions call their handler once with a fixed target.
	KindDirect Kind = iota
	// KindComponent subscriptions call their handler once per entity that
	// matches the selector at publish time.
	KindComponent
)

func (k Kind) String() string {
	if k == KindComponent {
		return "component"
	}
	return "direct"
}

// Subscription is a read-only view of one registered handler.
type Subscription interface {
	// ID is a unique identifier, useful only for diagnostics.
	ID() string
	Event() string
	Kind() Kind
	// Owner is the fixed target of a direct subscription, nil otherwise.
	Owner() *models.Entity
	// Selector is the component name of a broadcast subscription.
	Selector() string
}

// Observer is notified about every publish that has at least one
// subscription. Observers should return quickly; they run inside dispatch.
type Observer interface {
	OnPublish(event string, args []any)
	OnDelivered(event string, calls int, err error, took time.Duration)
}

// Metrics is a minimal set of counters; it is only updated while at least
// one observer is registered.
type Metrics struct {
	Published     uint64
	HandlerCalls  uint64
	Errors        uint64
	Subscriptions uint64
	Events        uint64
}
