package gaim

import (
	"context"
	"time"
)

// Short forms. Each behaves exactly like its long counterpart.

func (rt *Runtime) E(components string) *Entity { return rt.Entity(components) }

func (rt *Runtime) C(name string, setup Setup) { rt.Component(name, setup) }

func (rt *Runtime) CS(event, component string, handler Handler) *Runtime {
	return rt.Subscribe(event, component, handler)
}

func (rt *Runtime) F(selector string) []*Entity { return rt.Find(selector) }

func (rt *Runtime) R(ctx context.Context, step time.Duration) error { return rt.Run(ctx, step) }

func (rt *Runtime) S() { rt.Stop() }
