package loop

import (
	"github.com/zeusync/gaim/internal/core/gamepad"
	"github.com/zeusync/gaim/internal/core/observability/log"
)

// DefaultQueueSize is the host task buffer used when none is configured.
const DefaultQueueSize = 256

type Option func(*Loop)

// WithGamepad makes Run probe pad for support and poll it every tick.
func WithGamepad(pad gamepad.Pad) Option {
	return func(l *Loop) { l.pad = pad }
}

// WithKeyReplay republishes held keys every tick through r. Meant for hosts
// whose key repeat does not emit keydown on its own.
func WithKeyReplay(r KeyReplayer) Option {
	return func(l *Loop) { l.replay = r }
}

// WithTickRecovery keeps the loop alive when a tick fails: the error or
// recovered panic is logged and the next tick is scheduled as usual.
// Without it the first failing tick ends Run.
func WithTickRecovery() Option {
	return func(l *Loop) { l.recover = true }
}

// WithQueueSize sets the host task buffer.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

func WithLogger(logger log.Log) Option {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}
