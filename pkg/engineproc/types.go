// Package engineproc drives an external UCI engine subprocess. Unlike a UCI
// engine implementation (which answers a GUI), this package plays the GUI
// role: it spawns the engine, speaks the handshake, and turns its line
// protocol into a typed event stream.
package engineproc

import "fmt"

// GoParams configures a "go" command.
type GoParams struct {
	MoveTimeMillis int  // search exactly this long, if > 0
	Depth          int  // search to this depth, if > 0
	Infinite       bool // search until Stop, ignoring MoveTimeMillis/Depth
}

func (g GoParams) uci() string {
	switch {
	case g.Infinite:
		return "go infinite"
	case g.MoveTimeMillis > 0:
		return fmt.Sprintf("go movetime %d", g.MoveTimeMillis)
	case g.Depth > 0:
		return fmt.Sprintf("go depth %d", g.Depth)
	default:
		return "go"
	}
}

// ScoreKind distinguishes a centipawn evaluation from a forced mate.
type ScoreKind uint8

const (
	Centipawns ScoreKind = iota
	Mate
)

// Score is the engine's evaluation of a position, reported on an "info"
// line.
type Score struct {
	Kind  ScoreKind
	Value int // centipawns, or mate-in-N plies (N, signed)
}

// Info is one "info" line from the engine, as much of it as was present.
type Info struct {
	Depth     int
	Score     Score
	Nodes     uint64
	PV        []string // principal variation, in UCI move notation
	TimeMs    int
}

// Direction marks which way a raw UCI line travelled, for logging.
type Direction uint8

const (
	ToEngine Direction = iota
	FromEngine
)

// EventKind discriminates Event.
type EventKind uint8

const (
	EventReady EventKind = iota
	EventInfo
	EventBestMove
	EventError
	EventRawMessage
)

// Event is the sum type emitted on an Adapter's event channel. Only the
// field(s) relevant to Kind are populated.
type Event struct {
	Kind EventKind

	Info         Info      // EventInfo
	BestMove     string    // EventBestMove, UCI move notation
	Err          error     // EventError
	RawDirection Direction // EventRawMessage
	RawMessage   string    // EventRawMessage
}
