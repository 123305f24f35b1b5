package session

import "github.com/benediktms/chesstty/pkg/rules"

// command is the mailbox envelope type: one variant per row of the session
// command table, each carrying its own reply channel. The actor's process
// loop type-switches on command and is the only goroutine that touches
// session state, mirroring this corpus's UCI driver loop (a single select
// reading one command channel) generalized from string lines to typed
// commands with replies.
type command interface {
	isCommand()
}

type cmdMakeMove struct {
	move  rules.Move
	reply chan<- replySnapshot
}

type cmdUndo struct {
	reply chan<- replySnapshot
}

type cmdRedo struct {
	reply chan<- replySnapshot
}

type cmdReset struct {
	fen   string // empty means the standard initial position
	reply chan<- replySnapshot
}

type cmdConfigureEngine struct {
	path   string
	args   []string
	config EngineConfig
	reply  chan<- replySnapshot
}

type cmdStopEngine struct {
	reply chan<- replySnapshot
}

type cmdPause struct {
	reply chan<- replySnapshot
}

type cmdResume struct {
	reply chan<- replySnapshot
}

type cmdSetTimer struct {
	whiteMs int64
	blackMs int64
	reply   chan<- replySnapshot
}

type cmdGetSnapshot struct {
	reply chan<- replySnapshot
}

type cmdGetLegalMoves struct {
	from  rules.Square // rules.NoSquare means "all legal moves"
	reply chan<- replyMoves
}

type cmdSubscribe struct {
	reply chan<- replySubscribe
}

type cmdShutdown struct {
	reply chan<- replySnapshot
}

func (cmdMakeMove) isCommand()        {}
func (cmdUndo) isCommand()            {}
func (cmdRedo) isCommand()            {}
func (cmdReset) isCommand()           {}
func (cmdConfigureEngine) isCommand() {}
func (cmdStopEngine) isCommand()      {}
func (cmdPause) isCommand()           {}
func (cmdResume) isCommand()          {}
func (cmdSetTimer) isCommand()        {}
func (cmdGetSnapshot) isCommand()     {}
func (cmdGetLegalMoves) isCommand()   {}
func (cmdSubscribe) isCommand()       {}
func (cmdShutdown) isCommand()        {}

type replySnapshot struct {
	snapshot SessionSnapshot
	err      *Error
}

type replyMoves struct {
	moves []rules.LegalMove
	err   *Error
}

type replySubscribe struct {
	snapshot SessionSnapshot
	events   <-chan SessionEvent
}
