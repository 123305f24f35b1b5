package main

import (
	"fmt"
	"time"

	"github.com/benediktms/chesstty/pkg/analysis"
	"github.com/benediktms/chesstty/pkg/persistence"
	"github.com/benediktms/chesstty/pkg/persistence/badgerstore"
	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/benediktms/chesstty/pkg/rules/fen"
	"github.com/benediktms/chesstty/pkg/session"
	"github.com/dgraph-io/badger/v4"
)

// Stores bundles the badger-backed record families chessd persists, one
// database file shared across prefixes per pkg/persistence/badgerstore's
// layout.
type Stores struct {
	db        *badger.DB
	Sessions  *badgerstore.Store[persistence.SuspendedSession]
	Games     *badgerstore.Store[persistence.FinishedGame]
	Positions *badgerstore.Store[persistence.Position]
	Analyses  *badgerstore.Store[persistence.AdvancedGameAnalysisRecord]
}

func openStores(path string) (*Stores, error) {
	db, err := badgerstore.Open(path)
	if err != nil {
		return nil, err
	}
	s := &Stores{
		db:        db,
		Sessions:  badgerstore.New[persistence.SuspendedSession](db, "session"),
		Games:     badgerstore.New[persistence.FinishedGame](db, "game"),
		Positions: badgerstore.New[persistence.Position](db, "pos"),
		Analyses:  badgerstore.New[persistence.AdvancedGameAnalysisRecord](db, "analysis"),
	}
	if err := s.seedDefaultPositions(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// seedDefaultPositions installs the standard bookmarks once, on an empty
// database; a populated one is assumed to already carry them (or a user's
// edits to them).
func (s *Stores) seedDefaultPositions() error {
	existing, err := s.Positions.LoadAll()
	if err != nil {
		return fmt.Errorf("chessd: load seeded positions: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range persistence.DefaultPositions() {
		if _, err := s.Positions.Save(p); err != nil {
			return fmt.Errorf("chessd: seed position %v: %w", p.RecordID, err)
		}
	}
	return nil
}

func (s *Stores) Close() error {
	return s.db.Close()
}

// finishedGameRecord turns a concluded session's snapshot into the
// persistence-layer record Registry.OnFinish stores.
func finishedGameRecord(snap session.SessionSnapshot) persistence.FinishedGame {
	return persistence.FinishedGame{
		RecordID: "game_" + snap.SessionID,
		Result:   snap.Status.String(),
		Moves:    snap.History,
		StartFEN: fen.Initial,
	}
}

// analysisGameRecord reconstructs the pipeline's per-ply input from a
// session history, which only records each ply's resulting FEN: a ply's
// FENBefore is simply the previous ply's FENAfter (or the initial position,
// for the first ply), and movers strictly alternate starting with White.
func analysisGameRecord(gameID string, history []session.MoveRecord) analysis.GameRecord {
	plies := make([]analysis.GamePly, len(history))
	fenBefore := fen.Initial
	mover := rules.White
	var lastAt time.Time
	for i, mv := range history {
		var spent int64
		if i > 0 {
			spent = mv.AppliedAt.Sub(lastAt).Milliseconds()
		}
		plies[i] = analysis.GamePly{
			Ply:         i + 1,
			Mover:       mover,
			FENBefore:   fenBefore,
			FENAfter:    mv.FENAfter,
			SAN:         mv.SAN,
			TimeSpentMs: spent,
		}
		fenBefore = mv.FENAfter
		lastAt = mv.AppliedAt
		mover = mover.Opponent()
	}
	return analysis.GameRecord{GameID: gameID, Plies: plies}
}
