package input

import "sort"

// Publisher is the bus operation the forwarder needs.
type Publisher interface {
	Publish(event string, args ...any) error
}

// Forwarder turns host input callbacks into bus events and remembers which
// keys are held so the loop can replay them.
//
// It is not safe for concurrent use; hosts reach it through the loop.
type Forwarder struct {
	pub  Publisher
	held map[int]*KeyEvent
}

func NewForwarder(pub Publisher) *Forwarder {
	return &Forwarder{
		pub:  pub,
		held: make(map[int]*KeyEvent),
	}
}

// MouseDown marks right clicks and publishes mousedown.
func (f *Forwarder) MouseDown(ev *MouseEvent) error {
	ev.IsRightClick = isRightClick(ev)
	return f.pub.Publish(EventMouseDown, ev)
}

func isRightClick(ev *MouseEvent) bool {
	if ev.Which != 0 {
		return ev.Which == 3
	}
	if ev.Button != 0 {
		return ev.Button == 2
	}
	return false
}

func (f *Forwarder) MouseUp(ev *MouseEvent) error {
	return f.pub.Publish(EventMouseUp, ev)
}

func (f *Forwarder) MouseMove(ev *MouseEvent) error {
	return f.pub.Publish(EventMouseMove, ev)
}

func (f *Forwarder) Resize(ev *ResizeEvent) error {
	return f.pub.Publish(EventResize, ev)
}

// KeyDown records the key as held and publishes keydown with the event and
// its key code.
func (f *Forwarder) KeyDown(ev *KeyEvent) error {
	f.held[ev.KeyCode] = ev
	return f.pub.Publish(EventKeyDown, ev, ev.KeyCode)
}

// KeyUp forgets the key and publishes keyup with the event and its key code.
func (f *Forwarder) KeyUp(ev *KeyEvent) error {
	delete(f.held, ev.KeyCode)
	return f.pub.Publish(EventKeyUp, ev, ev.KeyCode)
}

// Held returns the held key codes in ascending order.
func (f *Forwarder) Held() []int {
	codes := make([]int, 0, len(f.held))
	for code := range f.held {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// IsHeld reports whether a keydown for code has not yet seen its keyup.
func (f *Forwarder) IsHeld(code int) bool {
	_, ok := f.held[code]
	return ok
}

// Replay publishes keydown again for every held key, in key code order,
// with the event that started the hold. Used on hosts whose key repeat does
// not generate keydown events of its own.
func (f *Forwarder) Replay() error {
	for _, code := range f.Held() {
		ev, ok := f.held[code]
		if !ok {
			// released by an earlier replayed handler
			continue
		}
		if err := f.pub.Publish(EventKeyDown, ev, code); err != nil {
			return err
		}
	}
	return nil
}
