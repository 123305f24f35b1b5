package session

import (
	"context"

	"github.com/benediktms/chesstty/pkg/rules"
)

// Handle is the public, concurrency-safe handle callers use to drive a
// session. It owns nothing but the mailbox: every call is a round trip
// through the actor's single-goroutine loop.
type Handle struct {
	id      string
	mailbox chan command
}

// ID returns the session identifier.
func (h *Handle) ID() string { return h.id }

func (h *Handle) MakeMove(ctx context.Context, mv rules.Move) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdMakeMove{move: mv, reply: reply}, reply)
}

func (h *Handle) Undo(ctx context.Context) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdUndo{reply: reply}, reply)
}

func (h *Handle) Redo(ctx context.Context) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdRedo{reply: reply}, reply)
}

// Reset restarts the session at fenStr, or the standard initial position if
// fenStr is empty.
func (h *Handle) Reset(ctx context.Context, fenStr string) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdReset{fen: fenStr, reply: reply}, reply)
}

// ConfigureEngine attaches (or replaces) the engine subprocess at path with
// args, applying config. Pass config.Enabled=false to detach without
// starting a process.
func (h *Handle) ConfigureEngine(ctx context.Context, path string, args []string, config EngineConfig) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdConfigureEngine{path: path, args: args, config: config, reply: reply}, reply)
}

func (h *Handle) StopEngine(ctx context.Context) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdStopEngine{reply: reply}, reply)
}

func (h *Handle) Pause(ctx context.Context) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdPause{reply: reply}, reply)
}

func (h *Handle) Resume(ctx context.Context) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdResume{reply: reply}, reply)
}

func (h *Handle) SetTimer(ctx context.Context, whiteMs, blackMs int64) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdSetTimer{whiteMs: whiteMs, blackMs: blackMs, reply: reply}, reply)
}

func (h *Handle) GetSnapshot(ctx context.Context) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdGetSnapshot{reply: reply}, reply)
}

// GetLegalMoves returns every legal move, or only those originating at from
// if from != rules.NoSquare.
func (h *Handle) GetLegalMoves(ctx context.Context, from rules.Square) ([]rules.LegalMove, error) {
	reply := make(chan replyMoves, 1)
	select {
	case h.mailbox <- cmdGetLegalMoves{from: from, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-reply:
		if r.err != nil {
			return nil, r.err
		}
		return r.moves, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribe atomically returns the session's current snapshot together with
// a channel of subsequent events, so the caller can never miss or
// double-receive the state in between. The channel is closed when the
// session shuts down.
func (h *Handle) Subscribe(ctx context.Context) (SessionSnapshot, <-chan SessionEvent, error) {
	reply := make(chan replySubscribe, 1)
	select {
	case h.mailbox <- cmdSubscribe{reply: reply}:
	case <-ctx.Done():
		return SessionSnapshot{}, nil, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.snapshot, r.events, nil
	case <-ctx.Done():
		return SessionSnapshot{}, nil, ctx.Err()
	}
}

// Shutdown stops the session actor and its engine subprocess, if any.
func (h *Handle) Shutdown(ctx context.Context) (SessionSnapshot, error) {
	reply := make(chan replySnapshot, 1)
	return h.sendSnapshot(ctx, cmdShutdown{reply: reply}, reply)
}

func (h *Handle) sendSnapshot(ctx context.Context, cmd command, reply chan replySnapshot) (SessionSnapshot, error) {
	select {
	case h.mailbox <- cmd:
	case <-ctx.Done():
		return SessionSnapshot{}, ctx.Err()
	}
	select {
	case r := <-reply:
		if r.err != nil {
			return SessionSnapshot{}, r.err
		}
		return r.snapshot, nil
	case <-ctx.Done():
		return SessionSnapshot{}, ctx.Err()
	}
}
