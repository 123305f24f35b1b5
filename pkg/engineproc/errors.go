package engineproc

import "errors"

// Protocol errors, ported from the reference UCI client's error taxonomy:
// a real UCI engine can fail in more specific ways than "something broke",
// and callers (the session actor's error mapping, spec error sum) benefit
// from telling them apart.
var (
	ErrMalformedMessage = errors.New("engineproc: malformed UCI message")
	ErrUnknownMessage   = errors.New("engineproc: unknown UCI message")
	ErrInvalidMove      = errors.New("engineproc: invalid move in UCI message")
	ErrInvalidSquare    = errors.New("engineproc: invalid square in UCI message")
	ErrInvalidPromotion = errors.New("engineproc: invalid promotion piece in UCI message")
	ErrNoStdin          = errors.New("engineproc: engine process has no stdin pipe")
	ErrNoStdout         = errors.New("engineproc: engine process has no stdout pipe")
	ErrProcessExited    = errors.New("engineproc: engine process exited unexpectedly")
	ErrAlreadySearching = errors.New("engineproc: search already active")
	ErrClosed           = errors.New("engineproc: adapter is closed")
)
