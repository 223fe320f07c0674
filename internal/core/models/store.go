package models

// Store owns every entity ever created, in creation order.
// It is not safe for concurrent use.
type Store struct {
	entities []*Entity
	nextID   EntityID
	router   Router
	created  []func(*Entity)
}

// NewStore creates an empty store whose entities publish and subscribe
// through router. router may be nil, in which case On and T are inert.
func NewStore(router Router) *Store {
	return &Store{
		nextID: 1,
		router: router,
	}
}

// OnEntityCreated registers a hook run, in registration order, after every
// Create has appended its entity.
func (s *Store) OnEntityCreated(fn func(*Entity)) {
	s.created = append(s.created, fn)
}

// Create allocates the next id, parses selector into tags, appends the
// entity and runs the creation hooks before returning it.
func (s *Store) Create(selector string) *Entity {
	names := ParseSelector(selector)
	tags := make([]tag, len(names))
	for i, n := range names {
		tags[i] = newTag(n)
	}

	e := &Entity{
		id:     s.nextID,
		tags:   tags,
		names:  names,
		router: s.router,
	}
	s.nextID++
	s.entities = append(s.entities, e)

	for _, fn := range s.created {
		fn(e)
	}
	return e
}

// Find resolves selector against the current store contents.
//
// The wildcard returns the store's own slice, not a copy. Any other
// selector returns the entities carrying that exact tag, in store order,
// or nil when none do.
func (s *Store) Find(selector string) []*Entity {
	if selector == Wildcard {
		return s.entities
	}
	want := newTag(selector)
	var out []*Entity
	for _, e := range s.entities {
		if e.has(want) {
			out = append(out, e)
		}
	}
	return out
}

// Get looks an entity up by id.
func (s *Store) Get(id EntityID) (*Entity, bool) {
	// ids are dense and start at 1
	if id == 0 || uint64(id) > uint64(len(s.entities)) {
		return nil, false
	}
	return s.entities[id-1], true
}

// Len returns the number of entities created so far.
func (s *Store) Len() int {
	return len(s.entities)
}
