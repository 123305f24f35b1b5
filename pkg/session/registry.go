package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/benediktms/chesstty/pkg/rules"
)

// Registry owns the set of live sessions for a running chessd process:
// creation, lookup, closing, and suspend/resume for persistence. It is the
// session-level counterpart to a connection pool; it never touches game
// state directly, only Handles.
type Registry struct {
	rules rules.ChessRules

	mu       sync.Mutex
	sessions map[string]*Handle
	onFinish []func(id string, snapshot SessionSnapshot)
}

func NewRegistry(r rules.ChessRules) *Registry {
	return &Registry{rules: r, sessions: make(map[string]*Handle)}
}

// Create spawns a new session and registers it under a fresh id of the form
// session_<unix-millis>-<random-hex>.
func (reg *Registry) Create(ctx context.Context, mode GameMode) (*Handle, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("session: generate id: %w", err)
	}

	h := Spawn(ctx, id, reg.rules, mode)

	reg.mu.Lock()
	reg.sessions[id] = h
	reg.mu.Unlock()

	go reg.watchFinish(ctx, h)
	return h, nil
}

// Get returns the handle for id, if the session is live.
func (reg *Registry) Get(id string) (*Handle, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	h, ok := reg.sessions[id]
	return h, ok
}

// Close shuts the session down and removes it from the registry.
func (reg *Registry) Close(ctx context.Context, id string) error {
	reg.mu.Lock()
	h, ok := reg.sessions[id]
	delete(reg.sessions, id)
	reg.mu.Unlock()

	if !ok {
		return nil
	}
	_, err := h.Shutdown(ctx)
	return err
}

// Suspend pauses the session and returns its final snapshot for the caller
// to persist (see pkg/persistence). The session remains registered.
func (reg *Registry) Suspend(ctx context.Context, id string) (SessionSnapshot, error) {
	h, ok := reg.Get(id)
	if !ok {
		return SessionSnapshot{}, newErr(Internal, "unknown session: "+id)
	}
	return h.Pause(ctx)
}

// Resume un-pauses a previously suspended session.
func (reg *Registry) Resume(ctx context.Context, id string) (SessionSnapshot, error) {
	h, ok := reg.Get(id)
	if !ok {
		return SessionSnapshot{}, newErr(Internal, "unknown session: "+id)
	}
	return h.Resume(ctx)
}

// OnFinish registers a callback invoked once, with the session's final
// snapshot, when its GamePhase becomes Finished. A session that shuts down
// before finishing does not invoke it.
func (reg *Registry) OnFinish(fn func(id string, snapshot SessionSnapshot)) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.onFinish = append(reg.onFinish, fn)
}

// watchFinish subscribes to h's events and fires the finish callbacks (and
// deregisters the session) the first time it observes Phase == Finished. If
// the event channel closes first because the actor shut down, it returns
// without firing them.
func (reg *Registry) watchFinish(ctx context.Context, h *Handle) {
	_, events, err := h.Subscribe(ctx)
	if err != nil {
		return
	}
	for ev := range events {
		if ev.Kind != StateChanged || ev.Snapshot.Phase != Finished {
			continue
		}
		reg.mu.Lock()
		delete(reg.sessions, h.id)
		callbacks := append([]func(string, SessionSnapshot){}, reg.onFinish...)
		reg.mu.Unlock()

		for _, fn := range callbacks {
			fn(h.id, ev.Snapshot)
		}
		return
	}
}

func newSessionID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("session_%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b[:])), nil
}
