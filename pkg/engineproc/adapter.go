package engineproc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Adapter spawns and drives one external UCI engine subprocess. It is the
// GUI side of the UCI protocol: the mirror image of a UCI engine
// implementation such as this corpus's own morlock/pkg/engine/uci driver,
// which instead makes a process answer like an engine.
type Adapter struct {
	cmd *exec.Cmd
	in  io.WriteCloser

	mu        sync.Mutex // serializes writes to stdin
	active    atomic.Bool
	coalesce  atomic.Bool
	bestmove  chan string   // reader -> Go(), used only while coalescing
	handshake chan struct{} // closed on the first "uciok"

	events chan Event
	closed atomic.Bool
	done   chan struct{}
}

// Spawn starts name with args as an external UCI engine process and performs
// the "uci"/"uciok" handshake. The returned event channel is closed when the
// adapter shuts down.
func Spawn(ctx context.Context, name string, args ...string) (*Adapter, <-chan Event, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	in, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoStdin, err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNoStdout, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("engineproc: spawn %v: %w", name, err)
	}

	a := &Adapter{
		cmd:       cmd,
		in:        in,
		bestmove:  make(chan string, 1),
		handshake: make(chan struct{}),
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
	}
	go a.readLoop(ctx, out)

	if err := a.send(ctx, "uci"); err != nil {
		return nil, nil, err
	}
	select {
	case <-a.handshake:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	return a, a.events, nil
}

// SetOption sends a UCI "setoption" command.
func (a *Adapter) SetOption(ctx context.Context, name, value string) error {
	if value == "" {
		return a.send(ctx, fmt.Sprintf("setoption name %v", name))
	}
	return a.send(ctx, fmt.Sprintf("setoption name %v value %v", name, value))
}

// SetPosition sends the current position as a FEN string plus the moves
// played since, per the UCI "position" command.
func (a *Adapter) SetPosition(ctx context.Context, fen string, moves []string) error {
	cmd := fmt.Sprintf("position fen %v", fen)
	if len(moves) > 0 {
		cmd += " moves " + strings.Join(moves, " ")
	}
	return a.send(ctx, cmd)
}

// Go starts a search. If a search is already active, it is stopped first
// (discarding its bestmove) and the new search is coalesced in, per the
// engine adapter's coalesced-Go contract.
func (a *Adapter) Go(ctx context.Context, opt GoParams) error {
	if a.closed.Load() {
		return ErrClosed
	}
	if a.active.Load() {
		a.coalesce.Store(true)
		if err := a.send(ctx, "stop"); err != nil {
			return err
		}
		select {
		case <-a.bestmove:
		case <-ctx.Done():
			return ctx.Err()
		}
		a.coalesce.Store(false)
	}
	a.active.Store(true)
	return a.send(ctx, opt.uci())
}

// Ping sends "isready"; the caller observes the matching EventReady on the
// adapter's event channel.
func (a *Adapter) Ping(ctx context.Context) error {
	return a.send(ctx, "isready")
}

// Stop halts the active search, if any; the resulting bestmove is delivered
// normally on the event channel.
func (a *Adapter) Stop(ctx context.Context) error {
	if !a.active.Load() {
		return nil
	}
	return a.send(ctx, "stop")
}

// Quit shuts down the engine process cleanly.
func (a *Adapter) Quit(ctx context.Context) error {
	if a.closed.CAS(false, true) {
		_ = a.send(ctx, "quit")
		_ = a.in.Close()
		close(a.done)
	}
	return nil
}

// Closed returns a channel closed once the adapter has shut down.
func (a *Adapter) Closed() <-chan struct{} {
	return a.done
}

func (a *Adapter) send(ctx context.Context, line string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	logw.Debugf(ctx, "engineproc > %v", line)
	a.events <- Event{Kind: EventRawMessage, RawDirection: ToEngine, RawMessage: line}

	_, err := io.WriteString(a.in, line+"\n")
	return err
}

func (a *Adapter) readLoop(ctx context.Context, out io.Reader) {
	defer close(a.events)

	scanner := bufio.NewScanner(out)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		logw.Debugf(ctx, "engineproc < %v", line)
		a.events <- Event{Kind: EventRawMessage, RawDirection: FromEngine, RawMessage: line}
		a.dispatch(line)
	}
	if err := scanner.Err(); err != nil {
		a.events <- Event{Kind: EventError, Err: fmt.Errorf("%w: %v", ErrProcessExited, err)}
	}
}

func (a *Adapter) dispatch(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "uciok":
		select {
		case <-a.handshake:
			// already closed; uciok arrived again (e.g. after ucinewgame)
		default:
			close(a.handshake)
		}
	case "readyok":
		a.events <- Event{Kind: EventReady}
	case "info":
		if info, ok := parseInfo(fields[1:]); ok {
			a.events <- Event{Kind: EventInfo, Info: info}
		}
	case "bestmove":
		if len(fields) < 2 {
			a.events <- Event{Kind: EventError, Err: fmt.Errorf("%w: %v", ErrMalformedMessage, line)}
			return
		}
		a.active.Store(false)
		if a.coalesce.Load() {
			a.bestmove <- fields[1]
			return
		}
		a.events <- Event{Kind: EventBestMove, BestMove: fields[1]}
	}
}

func parseInfo(fields []string) (Info, bool) {
	var info Info
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if i+1 < len(fields) {
				info.Depth, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "nodes":
			if i+1 < len(fields) {
				n, _ := strconv.ParseUint(fields[i+1], 10, 64)
				info.Nodes = n
				i++
			}
		case "time":
			if i+1 < len(fields) {
				info.TimeMs, _ = strconv.Atoi(fields[i+1])
				i++
			}
		case "score":
			if i+2 < len(fields) {
				switch fields[i+1] {
				case "cp":
					v, _ := strconv.Atoi(fields[i+2])
					info.Score = Score{Kind: Centipawns, Value: v}
				case "mate":
					v, _ := strconv.Atoi(fields[i+2])
					info.Score = Score{Kind: Mate, Value: v}
				}
				i += 2
			}
		case "pv":
			info.PV = append([]string{}, fields[i+1:]...)
			i = len(fields)
		}
	}
	return info, true
}
