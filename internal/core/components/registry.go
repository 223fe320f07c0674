package components

import (
	"sort"

	"github.com/zeusync/gaim/internal/core/models"
	"github.com/zeusync/gaim/internal/core/observability/log"
)

// Setup prepares an entity for a component, typically by subscribing
// behaviour to the bus.
type Setup func(e *models.Entity)

// Finder is the query the registry runs when a component is registered.
type Finder interface {
	Find(selector string) []*models.Entity
}

// Registry maps component names to setup callbacks.
//
// Registering a name runs the setup on every entity already tagged with it;
// registering the same name again replaces the setup and runs the new one on
// those entities again. Entities created later get the setup once at
// creation through Apply.
type Registry struct {
	setups map[string]Setup
	finder Finder
	logger log.Log
}

func NewRegistry(finder Finder, logger log.Log) *Registry {
	if logger == nil {
		logger = log.Provide()
	}
	return &Registry{
		setups: make(map[string]Setup),
		finder: finder,
		logger: logger.With(log.String("component", "registry")),
	}
}

// Register stores setup under name and applies it to every entity
// currently tagged name, in store order.
func (r *Registry) Register(name string, setup Setup) {
	_, replaced := r.setups[name]
	r.setups[name] = setup

	entities := r.finder.Find(name)
	for _, e := range entities {
		setup(e)
	}

	r.logger.Debug("component registered",
		log.String("name", name),
		log.Bool("replaced", replaced),
		log.Int("entities", len(entities)))
}

// Apply runs the setups of e's tags in tag order. Tags without a
// registered setup are skipped.
func (r *Registry) Apply(e *models.Entity) {
	for _, name := range e.Components() {
		if setup, ok := r.setups[name]; ok {
			setup(e)
		}
	}
}

// Has reports whether name has a registered setup.
func (r *Registry) Has(name string) bool {
	_, ok := r.setups[name]
	return ok
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.setups))
	for name := range r.setups {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
