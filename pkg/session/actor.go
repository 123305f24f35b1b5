package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/benediktms/chesstty/pkg/engineproc"
	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/benediktms/chesstty/pkg/rules/fen"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

const (
	tickInterval            = 100 * time.Millisecond
	defaultEngineMoveTimeMs = 1000
)

// Actor owns one game session: it is the only goroutine that ever reads or
// writes its state. Every other goroutine communicates with it exclusively
// through channels: callers through the mailbox, the engine adapter's reader
// through its event channel, and the timer through the ticker. This mirrors
// this corpus's UCI driver loop generalized from raw protocol lines to
// typed, reply-bearing commands.
type Actor struct {
	id      string
	mailbox chan command
	rules   rules.ChessRules

	pos       rules.Position
	history   []MoveRecord
	posStack  []rules.Position // posStack[i] is the position after history[:i]
	redoStack []MoveRecord

	phase  GamePhase
	mode   GameMode
	status rules.GameStatus

	engineConfig   EngineConfig
	enginePath     string
	engineArgs     []string
	engine         *engineproc.Adapter
	engineEvents   <-chan engineproc.Event
	engineThinking bool
	lastAnalysis   lang.Optional[EngineAnalysis]

	timer           TimerSnapshot
	lastTimerUpdate time.Time // wall-clock time timer.ActiveSide's budget was last charged

	bus  broadcaster
	done chan struct{}
}

// Spawn starts a new session actor on the initial position and returns a
// Handle to it. The caller drives it exclusively through the returned
// handle's methods.
func Spawn(ctx context.Context, id string, r rules.ChessRules, mode GameMode) *Handle {
	pos, err := fen.Decode(fen.Initial)
	if err != nil {
		panic(fmt.Sprintf("session: initial FEN must decode: %v", err))
	}

	a := &Actor{
		id:       id,
		mailbox:  make(chan command, 16),
		rules:    r,
		pos:      pos,
		posStack: []rules.Position{pos},
		// A freshly spawned session already has a valid starting position
		// and no configuration step the command table gates on, so it
		// begins directly in Playing rather than the otherwise-unreachable
		// Setup phase (the command table names no transition out of it).
		phase:  Playing,
		mode:   mode,
		status: rules.GameStatus{Result: rules.Undecided},
		done:   make(chan struct{}),
	}
	go a.run(ctx)
	return &Handle{id: id, mailbox: a.mailbox}
}

func (a *Actor) run(ctx context.Context) {
	defer close(a.done)
	defer a.bus.closeAll()
	defer a.stopEngineProcess(ctx)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd, ok := <-a.mailbox:
			if !ok {
				return
			}
			if shutdown := a.handle(ctx, cmd); shutdown {
				return
			}

		case ev, ok := <-a.engineEvents:
			if !ok {
				a.engineEvents = nil
				continue
			}
			a.handleEngineEvent(ctx, ev)

		case <-ticker.C:
			a.checkFlag()
		}
	}
}

func (a *Actor) handle(ctx context.Context, cmd command) (shutdown bool) {
	switch c := cmd.(type) {
	case cmdMakeMove:
		c.reply <- a.makeMove(ctx, c.move)
	case cmdUndo:
		c.reply <- a.undo(ctx)
	case cmdRedo:
		c.reply <- a.redo(ctx)
	case cmdReset:
		c.reply <- a.reset(ctx, c.fen)
	case cmdConfigureEngine:
		c.reply <- a.configureEngine(ctx, c)
	case cmdStopEngine:
		c.reply <- a.stopEngine(ctx)
	case cmdPause:
		c.reply <- a.pause(ctx)
	case cmdResume:
		c.reply <- a.resume(ctx)
	case cmdSetTimer:
		c.reply <- a.setTimer(c.whiteMs, c.blackMs)
	case cmdGetSnapshot:
		c.reply <- replySnapshot{snapshot: a.snapshot()}
	case cmdGetLegalMoves:
		c.reply <- a.getLegalMoves(ctx, c.from)
	case cmdSubscribe:
		// Snapshot and subscription must be produced in the same mailbox
		// turn so the caller can never miss an event published between the
		// two, nor see a snapshot older than the subscription's first event.
		c.reply <- replySubscribe{snapshot: a.snapshot(), events: a.bus.subscribe()}
	case cmdShutdown:
		c.reply <- replySnapshot{snapshot: a.snapshot()}
		return true
	}
	return false
}

func (a *Actor) makeMove(ctx context.Context, mv rules.Move) replySnapshot {
	if a.phase != Playing {
		return errReply(InvalidPhaseTransition, "session is not in the playing phase")
	}
	if !a.status.IsOngoing() {
		return errReply(GameNotOngoing, "game has already concluded")
	}

	legal := a.rules.LegalMoves(ctx, a.pos)
	resolved := rules.ConvertUCICastling(mv, legal)

	next, applied, err := a.rules.Apply(ctx, a.pos, resolved)
	if err != nil {
		return errReply(IllegalMove, err.Error())
	}

	a.commit(next, applied)
	a.redoStack = nil
	a.afterStateChange(ctx)
	return replySnapshot{snapshot: a.snapshot()}
}

func (a *Actor) commit(next rules.Position, applied rules.AppliedMove) {
	record := MoveRecord{
		Move:      applied.Move,
		Piece:     applied.Piece,
		Captured:  applied.Captured,
		SAN:       applied.SAN,
		FENAfter:  fen.Encode(next),
		AppliedAt: time.Now(),
	}
	a.chargeTimerForMove()
	a.history = append(a.history, record)
	a.posStack = append(a.posStack, next)
	a.pos = next
	a.status = a.rules.Status(context.Background(), next, a.priorKeys())
	if !a.status.IsOngoing() {
		a.phase = Finished
	}
}

// chargeTimerForMove subtracts the wall-clock time actually spent since the
// last charge from the mover's (the side still on the move in a.pos, prior
// to this commit) remaining budget, then hands the clock to the opponent. A
// no-op for untimed games, where ActiveSide is never set.
func (a *Actor) chargeTimerForMove() {
	mover, timed := a.timer.ActiveSide.V()
	if !timed {
		return
	}
	now := time.Now()
	elapsed := now.Sub(a.lastTimerUpdate).Milliseconds()
	if mover == rules.White {
		a.timer.WhiteMs -= elapsed
	} else {
		a.timer.BlackMs -= elapsed
	}
	a.timer.ActiveSide = lang.Some(mover.Opponent())
	a.lastTimerUpdate = now
}

func (a *Actor) priorKeys() []string {
	keys := make([]string, len(a.posStack))
	for i, p := range a.posStack {
		keys[i] = p.PositionKey()
	}
	return keys
}

// popOne pops the top history record, rewinding pos/posStack to match, and
// returns the color of the side that made the popped move.
func (a *Actor) popOne() rules.Color {
	mover := a.posStack[len(a.posStack)-2].Turn()
	last := a.history[len(a.history)-1]
	a.redoStack = append(a.redoStack, last)
	a.history = a.history[:len(a.history)-1]
	a.posStack = a.posStack[:len(a.posStack)-1]
	a.pos = a.posStack[len(a.posStack)-1]
	return mover
}

func (a *Actor) undo(ctx context.Context) replySnapshot {
	if len(a.history) == 0 {
		return errReply(NothingToUndo, "no moves to undo")
	}

	// Cancel any outstanding search before rewinding: its bestmove, if left
	// to arrive, would otherwise land against the position it was computed
	// for, not the one undo leaves behind.
	if a.engine != nil {
		_ = a.engine.Stop(ctx)
	}

	mover := a.popOne()
	// In an engine-vs-human game, undoing the engine's reply would otherwise
	// leave the engine to move again; pop the human move beneath it too so
	// the session always comes back to a human-to-move state.
	if a.mode.Kind == HumanVsEngine && a.mode.isEngineControlled(mover) && len(a.history) > 0 {
		a.popOne()
	}

	a.status = a.rules.Status(ctx, a.pos, a.priorKeys())
	if a.phase == Finished && a.status.IsOngoing() {
		a.phase = Playing
	}

	a.afterStateChange(ctx)
	return replySnapshot{snapshot: a.snapshot()}
}

func (a *Actor) redo(ctx context.Context) replySnapshot {
	if len(a.redoStack) == 0 {
		return errReply(NothingToRedo, "no moves to redo")
	}

	record := a.redoStack[len(a.redoStack)-1]
	a.redoStack = a.redoStack[:len(a.redoStack)-1]

	next, applied, err := a.rules.Apply(ctx, a.pos, record.Move)
	if err != nil {
		// The move was legal when first played; this can only happen if the
		// rules implementation changed underfoot.
		return errReply(Internal, "redo: previously legal move is no longer legal")
	}
	a.commit(next, applied)

	a.afterStateChange(ctx)
	return replySnapshot{snapshot: a.snapshot()}
}

func (a *Actor) reset(ctx context.Context, fenStr string) replySnapshot {
	if fenStr == "" {
		fenStr = fen.Initial
	}
	pos, err := fen.Decode(fenStr)
	if err != nil {
		return errReply(InvalidFen, err.Error())
	}

	a.pos = pos
	a.history = nil
	a.posStack = []rules.Position{pos}
	a.redoStack = nil
	a.status = a.rules.Status(ctx, pos, a.priorKeys())
	a.phase = Playing
	a.timer = TimerSnapshot{}
	a.lastTimerUpdate = time.Time{}
	a.lastAnalysis = lang.Optional[EngineAnalysis]{}
	if a.engine != nil {
		_ = a.engine.Stop(ctx)
	}
	a.engineThinking = false

	a.afterStateChange(ctx)
	return replySnapshot{snapshot: a.snapshot()}
}

func (a *Actor) configureEngine(ctx context.Context, c cmdConfigureEngine) replySnapshot {
	a.stopEngineProcess(ctx)

	a.enginePath = c.path
	a.engineArgs = c.args
	a.engineConfig = c.config

	if !c.config.Enabled {
		return replySnapshot{snapshot: a.snapshot()}
	}

	eng, events, err := engineproc.Spawn(ctx, c.path, c.args...)
	if err != nil {
		return errReply(EngineCrashed, err.Error())
	}
	a.engine = eng
	a.engineEvents = events

	if c.config.HashMB > 0 {
		_ = eng.SetOption(ctx, "Hash", strconv.Itoa(c.config.HashMB))
	}
	if c.config.Threads > 0 {
		_ = eng.SetOption(ctx, "Threads", strconv.Itoa(c.config.Threads))
	}
	if c.config.Skill > 0 {
		_ = eng.SetOption(ctx, "Skill Level", strconv.Itoa(c.config.Skill))
	}

	if a.phase == Playing {
		a.afterStateChange(ctx)
	}
	return replySnapshot{snapshot: a.snapshot()}
}

// stopEngine halts an in-flight search without tearing down the configured
// engine process; the thinking flag clears when the resulting bestmove event
// arrives, not here.
func (a *Actor) stopEngine(ctx context.Context) replySnapshot {
	if a.engine != nil {
		_ = a.engine.Stop(ctx)
	}
	return replySnapshot{snapshot: a.snapshot()}
}

func (a *Actor) stopEngineProcess(ctx context.Context) {
	if a.engine == nil {
		return
	}
	_ = a.engine.Quit(ctx)
	a.engine = nil
	a.engineEvents = nil
	a.engineThinking = false
}

func (a *Actor) pause(ctx context.Context) replySnapshot {
	if a.phase != Playing {
		return errReply(InvalidPhaseTransition, "session is not playing")
	}
	a.phase = Paused
	if a.engine != nil {
		_ = a.engine.Stop(ctx)
	}
	a.publishState()
	return replySnapshot{snapshot: a.snapshot()}
}

func (a *Actor) resume(ctx context.Context) replySnapshot {
	if a.phase != Paused {
		return errReply(InvalidPhaseTransition, "session is not paused")
	}
	a.phase = Playing
	// The paused interval must never be charged to whoever was on the move;
	// restart the charge window from the moment play actually resumes.
	if _, timed := a.timer.ActiveSide.V(); timed {
		a.lastTimerUpdate = time.Now()
	}
	a.afterStateChange(ctx)
	return replySnapshot{snapshot: a.snapshot()}
}

func (a *Actor) setTimer(whiteMs, blackMs int64) replySnapshot {
	a.timer.WhiteMs = whiteMs
	a.timer.BlackMs = blackMs
	if a.phase == Playing {
		a.timer.ActiveSide = lang.Some(a.pos.Turn())
		a.lastTimerUpdate = time.Now()
	}
	a.publishState()
	return replySnapshot{snapshot: a.snapshot()}
}

func (a *Actor) getLegalMoves(ctx context.Context, from rules.Square) replyMoves {
	all := a.rules.LegalMoves(ctx, a.pos)
	if from == rules.NoSquare {
		return replyMoves{moves: all}
	}
	var filtered []rules.LegalMove
	for _, m := range all {
		if m.Move.From == from {
			filtered = append(filtered, m)
		}
	}
	return replyMoves{moves: filtered}
}

// afterStateChange runs the engine-coupling auto-trigger: whenever the game
// is ongoing, playing, and it is the engine's turn per GameMode, kick off a
// new search automatically. It also republishes the current snapshot.
func (a *Actor) afterStateChange(ctx context.Context) {
	a.publishState()

	if a.phase != Playing || !a.status.IsOngoing() {
		return
	}
	if a.engine == nil || !a.engineConfig.Enabled {
		return
	}
	if !a.mode.isEngineControlled(a.pos.Turn()) {
		return
	}

	moves := make([]string, len(a.history))
	for i, r := range a.history {
		moves[i] = r.Move.String()
	}
	if err := a.engine.SetPosition(ctx, fen.Initial, moves); err != nil {
		logw.Errorf(ctx, "session %v: set position: %v", a.id, err)
		return
	}
	if err := a.engine.Go(ctx, engineproc.GoParams{MoveTimeMillis: defaultEngineMoveTimeMs}); err != nil {
		logw.Errorf(ctx, "session %v: go: %v", a.id, err)
		return
	}
	a.engineThinking = true
}

func (a *Actor) handleEngineEvent(ctx context.Context, ev engineproc.Event) {
	switch ev.Kind {
	case engineproc.EventInfo:
		analysis := EngineAnalysis{PV: ev.Info.PV}
		if ev.Info.Depth > 0 {
			analysis.Depth = lang.Some(ev.Info.Depth)
		}
		if ev.Info.TimeMs > 0 {
			analysis.TimeMs = lang.Some(ev.Info.TimeMs)
		}
		if ev.Info.Nodes > 0 {
			analysis.Nodes = lang.Some(ev.Info.Nodes)
		}
		analysis.Score = lang.Some(AnalysisScore{Kind: ScoreKind(ev.Info.Score.Kind), Value: ev.Info.Score.Value})
		a.lastAnalysis = lang.Some(analysis)
		a.bus.publish(SessionEvent{Kind: EngineThinkingEvent, Analysis: analysis})

	case engineproc.EventBestMove:
		a.engineThinking = false
		mv, err := rules.ParseMove(ev.BestMove)
		if err != nil {
			a.bus.publish(SessionEvent{Kind: ErrorEvent, Text: err.Error()})
			return
		}
		reply := a.makeMove(ctx, mv)
		if reply.err != nil {
			a.bus.publish(SessionEvent{Kind: ErrorEvent, Text: reply.err.Error()})
		}

	case engineproc.EventRawMessage:
		dir := "to_engine"
		if ev.RawDirection == engineproc.FromEngine {
			dir = "from_engine"
		}
		a.bus.publish(SessionEvent{Kind: UciMessage, Direction: dir, Text: ev.RawMessage})

	case engineproc.EventError:
		a.engineThinking = false
		a.bus.publish(SessionEvent{Kind: ErrorEvent, Text: ev.Err.Error()})
	}
}

// checkFlag runs on every timer tick. Budgets are charged at move-apply time
// (chargeTimerForMove), not here; the tick only detects a side that has run
// out the clock while still to move, and finalizes the flag-loss.
func (a *Actor) checkFlag() {
	if a.phase != Playing {
		return
	}
	side, ok := a.timer.ActiveSide.V()
	if !ok {
		return
	}

	remaining := a.timer.WhiteMs
	if side == rules.Black {
		remaining = a.timer.BlackMs
	}
	if remaining-time.Since(a.lastTimerUpdate).Milliseconds() > 0 {
		return
	}

	if side == rules.White {
		a.timer.WhiteMs = 0
		a.status = rules.GameStatus{Result: rules.BlackWins}
	} else {
		a.timer.BlackMs = 0
		a.status = rules.GameStatus{Result: rules.WhiteWins}
	}
	a.phase = Finished
	a.publishState()
}

func (a *Actor) publishState() {
	a.bus.publish(SessionEvent{Kind: StateChanged, Snapshot: a.snapshot()})
}

func (a *Actor) snapshot() SessionSnapshot {
	var lastMove lang.Optional[rules.Move]
	if len(a.history) > 0 {
		lastMove = lang.Some(a.history[len(a.history)-1].Move)
	}

	history := make([]MoveRecord, len(a.history))
	copy(history, a.history)

	return SessionSnapshot{
		SessionID:      a.id,
		FEN:            fen.Encode(a.pos),
		SideToMove:     a.pos.Turn(),
		Phase:          a.phase,
		Mode:           a.mode,
		Status:         a.status,
		History:        history,
		LastMove:       lastMove,
		EngineConfig:   a.engineConfig,
		LatestAnalysis: a.lastAnalysis,
		EngineThinking: a.engineThinking,
		Timer:          a.timer,
	}
}

func errReply(k Kind, msg string) replySnapshot {
	return replySnapshot{err: newErr(k, msg)}
}
