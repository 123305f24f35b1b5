package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/benediktms/chesstty/pkg/config"
	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/benediktms/chesstty/pkg/session"
	"github.com/gorilla/websocket"
	"github.com/seekerror/logw"
)

// Server binds the session registry to HTTP: JSON endpoints for creating a
// session, MakeMove and GetSnapshot, and a WebSocket endpoint streaming a
// session's events. The other session commands have no endpoint.
type Server struct {
	registry *session.Registry
	stores   *Stores
	mux      *http.ServeMux
	upgrader websocket.Upgrader
}

func NewServer(ctx context.Context) (*Server, error) {
	stores, err := openStores(config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("chessd: open stores: %w", err)
	}

	s := &Server{
		registry: session.NewRegistry(rules.NewDefault()),
		stores:   stores,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	// §4.3's on_finish contract: persist the finished game unconditionally,
	// and enqueue an analysis run only when an analysis engine is configured.
	enginePath := config.AnalysisEnginePath()
	s.registry.OnFinish(func(id string, snap session.SessionSnapshot) {
		if _, err := s.stores.Games.Save(finishedGameRecord(snap)); err != nil {
			logw.Errorf(ctx, "chessd: persist finished game %v: %v", id, err)
		}
		if enginePath != "" {
			enqueueAnalysis(ctx, s.stores, enginePath, snap)
		}
	})

	s.mux.HandleFunc("/sessions", s.handleCreateSession)
	s.mux.HandleFunc("/sessions/move", s.handleMakeMove)
	s.mux.HandleFunc("/sessions/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/sessions/events", s.handleEvents)

	return s, nil
}

func (s *Server) Close() {
	_ = s.stores.Close()
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logw.Infof(ctx, "listening on %v", addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	h, err := s.registry.Create(r.Context(), session.GameMode{Kind: session.HumanVsHuman})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": h.ID()})
}

func (s *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Move      string `json:"move"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h, ok := s.registry.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown session: %v", req.SessionID))
		return
	}

	mv, err := rules.ParseMove(req.Move)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	snapshot, err := h.MakeMove(r.Context(), mv)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	h, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown session: %v", id))
		return
	}
	snapshot, err := h.GetSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// handleEvents upgrades to a WebSocket and relays a session's SessionEvent
// stream to the client as JSON frames until the client disconnects or the
// session closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	h, ok := s.registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown session: %v", id))
		return
	}

	snapshot, events, err := h.Subscribe(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logw.Errorf(r.Context(), "websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(session.SessionEvent{Kind: session.StateChanged, Snapshot: snapshot}); err != nil {
		return
	}

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			logw.Errorf(r.Context(), "websocket write failed: %v", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
