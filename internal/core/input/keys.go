package input

// Key codes of the arrow keys, as browsers report them.
const (
	KeyLeft  = 37
	KeyUp    = 38
	KeyRight = 39
	KeyDown  = 40
)

// KeyTable names the arrow key codes.
type KeyTable struct {
	Left, Up, Right, Down int
}

// Keys is the arrow key table handed to game code.
var Keys = KeyTable{
	Left:  KeyLeft,
	Up:    KeyUp,
	Right: KeyRight,
	Down:  KeyDown,
}
