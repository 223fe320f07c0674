// Package host connects remote input sources to a runtime.
package host

import (
	"github.com/pkg/errors"

	"github.com/zeusync/gaim/internal/core/loop"
	"github.com/zeusync/gaim/internal/host/codec"
)

// Runtime is what hosts need from the game runtime. Post is the only
// method hosts call from their own goroutines; Input and Gamepad are used
// inside posted tasks.
type Runtime interface {
	codec.Target
	Post(task loop.Task) error
}

// Deliver decodes one raw message and queues it for the loop. Decode
// errors and a full queue are returned; the caller decides whether the
// connection survives them.
func Deliver(rt Runtime, data []byte) error {
	msg, err := codec.Decode(data)
	if err != nil {
		return err
	}
	if err = rt.Post(codec.Task(rt, msg)); err != nil {
		return errors.Wrapf(err, "queue %s", msg.Type)
	}
	return nil
}
