package gaim

import "github.com/zeusync/gaim/internal/core/observability/log"

type settings struct {
	logger         log.Log
	gamepad        bool
	replayHeldKeys bool
	tickRecovery   bool
	queueSize      int
}

// Option configures a Runtime.
type Option func(*settings)

func WithLogger(logger log.Log) Option {
	return func(s *settings) { s.logger = logger }
}

// WithGamepadSupport tells the loop that the host can deliver gamepad
// state. Run then publishes gamepadSupport once and gamepad<slot> per tick.
func WithGamepadSupport(enabled bool) Option {
	return func(s *settings) { s.gamepad = enabled }
}

// WithHeldKeyReplay republishes keydown for every held key on every tick.
// Enable it for hosts whose key repeat does not emit keydown by itself.
func WithHeldKeyReplay(enabled bool) Option {
	return func(s *settings) { s.replayHeldKeys = enabled }
}

// WithTickRecovery keeps the loop running when a tick handler fails.
// By default the first failing tick ends Run.
func WithTickRecovery(enabled bool) Option {
	return func(s *settings) { s.tickRecovery = enabled }
}

// WithQueueSize sets how many host input tasks may wait for the loop.
func WithQueueSize(n int) Option {
	return func(s *settings) { s.queueSize = n }
}
