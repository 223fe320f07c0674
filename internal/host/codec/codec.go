// Package codec is the wire format hosts use to carry input into the runtime.
package codec

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/gaim/internal/core/gamepad"
	"github.com/zeusync/gaim/internal/core/input"
	"github.com/zeusync/gaim/internal/core/loop"
)

var ErrUnknownType = errors.New("unknown message type")

// Message types.
const (
	TypeMouseDown         = "mousedown"
	TypeMouseUp           = "mouseup"
	TypeMouseMove         = "mousemove"
	TypeKeyDown           = "keydown"
	TypeKeyUp             = "keyup"
	TypeResize            = "resize"
	TypeGamepad           = "gamepad"
	TypeGamepadDisconnect = "gamepaddisconnect"
)

// Message is one input record from a client. Only the fields relevant to
// Type are read.
type Message struct {
	Type string `json:"type"`

	X      int `json:"x,omitempty"`
	Y      int `json:"y,omitempty"`
	Which  int `json:"which,omitempty"`
	Button int `json:"button,omitempty"`

	KeyCode int    `json:"keyCode,omitempty"`
	Key     string `json:"key,omitempty"`

	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	Slot    int       `json:"slot,omitempty"`
	Axes    []float64 `json:"axes,omitempty"`
	Buttons []float64 `json:"buttons,omitempty"`
}

// Decode parses one JSON message and checks its type.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, errors.Wrap(err, "decode input message")
	}
	switch msg.Type {
	case TypeMouseDown, TypeMouseUp, TypeMouseMove, TypeKeyDown, TypeKeyUp,
		TypeResize, TypeGamepad, TypeGamepadDisconnect:
		return msg, nil
	default:
		return Message{}, errors.Wrapf(ErrUnknownType, "%q", msg.Type)
	}
}

// Encode is the inverse of Decode, used by clients and tests.
func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Target is what a decoded message is applied to.
type Target interface {
	Input() *input.Forwarder
	Gamepad() *gamepad.Hub
}

// Task turns msg into a loop task that applies it to t. The task must run
// on the loop goroutine.
func Task(t Target, msg Message) loop.Task {
	return func() error {
		return Apply(t, msg)
	}
}

// Apply feeds msg into t synchronously.
func Apply(t Target, msg Message) error {
	in := t.Input()
	switch msg.Type {
	case TypeMouseDown:
		return in.MouseDown(msg.mouse())
	case TypeMouseUp:
		return in.MouseUp(msg.mouse())
	case TypeMouseMove:
		return in.MouseMove(msg.mouse())
	case TypeKeyDown:
		return in.KeyDown(&input.KeyEvent{KeyCode: msg.KeyCode, Key: msg.Key})
	case TypeKeyUp:
		return in.KeyUp(&input.KeyEvent{KeyCode: msg.KeyCode, Key: msg.Key})
	case TypeResize:
		return in.Resize(&input.ResizeEvent{Width: msg.Width, Height: msg.Height})
	case TypeGamepad:
		t.Gamepad().Update(msg.Slot, &gamepad.State{Axes: msg.Axes, Buttons: msg.Buttons, Timestamp: time.Now()})
		return nil
	case TypeGamepadDisconnect:
		t.Gamepad().Disconnect(msg.Slot)
		return nil
	default:
		return errors.Wrapf(ErrUnknownType, "%q", msg.Type)
	}
}

func (m Message) mouse() *input.MouseEvent {
	return &input.MouseEvent{X: m.X, Y: m.Y, Which: m.Which, Button: m.Button}
}
