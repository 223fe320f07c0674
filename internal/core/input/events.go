package input

// Event names published by the forwarder.
const (
	EventMouseDown = "mousedown"
	EventMouseUp   = "mouseup"
	EventMouseMove = "mousemove"
	EventKeyDown   = "keydown"
	EventKeyUp     = "keyup"
	EventResize    = "resize"
)

// MouseEvent is a normalized pointer event.
//
// Which follows the legacy convention (1 left, 2 middle, 3 right, 0 unknown),
// Button the DOM one (0 left, 1 middle, 2 right). IsRightClick is filled in
// by Forwarder.MouseDown.
type MouseEvent struct {
	X            int  `json:"x"`
	Y            int  `json:"y"`
	Which        int  `json:"which,omitempty"`
	Button       int  `json:"button,omitempty"`
	IsRightClick bool `json:"isRightClick"`
}

// KeyEvent is a normalized keyboard event.
type KeyEvent struct {
	KeyCode int    `json:"keyCode"`
	Key     string `json:"key,omitempty"`
}

// ResizeEvent carries the new viewport size.
type ResizeEvent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
