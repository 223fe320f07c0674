package loop

import "errors"

var (
	ErrAlreadyRunning = errors.New("loop is already running")
	ErrQueueFull      = errors.New("loop task queue is full")
)
