package models

// EntityID identifies an entity. Ids start at 1 and are never reused.
type EntityID uint64

// Handler is the callback type shared by every subscription kind.
// target is the owning entity of a direct subscription, each matching
// entity of a component-broadcast subscription, or nil for a free-standing
// subscription. Returning an error aborts the rest of the dispatch.
type Handler func(target *Entity, args ...any) error

// Router is the part of the event bus an entity needs for its bound
// On and T operations.
type Router interface {
	SubscribeEntity(event string, owner *Entity, handler Handler) *Entity
	Publish(event string, args ...any) error
}

// Entity is an identity plus the component tags it was created with.
type Entity struct {
	id     EntityID
	tags   []tag
	names  []string
	router Router
}

// ID returns the entity identity.
func (e *Entity) ID() EntityID { return e.id }

// Components returns the component tags in declaration order.
// The slice is shared with the entity and must not be modified.
func (e *Entity) Components() []string { return e.names }

// Co is the short alias of Components.
func (e *Entity) Co() []string { return e.names }

// Has reports whether the entity carries the component tag.
func (e *Entity) Has(component string) bool {
	return e.has(newTag(component))
}

func (e *Entity) has(t tag) bool {
	for _, own := range e.tags {
		if own.equal(t) {
			return true
		}
	}
	return false
}

// On subscribes handler to event with this entity as its target.
func (e *Entity) On(event string, handler Handler) *Entity {
	if e.router == nil {
		return e
	}
	return e.router.SubscribeEntity(event, e, handler)
}

// T publishes event through the bus the entity was created on.
func (e *Entity) T(event string, args ...any) error {
	if e.router == nil {
		return nil
	}
	return e.router.Publish(event, args...)
}

// Trigger is the long form of T.
func (e *Entity) Trigger(event string, args ...any) error {
	return e.T(event, args...)
}
