// Package persistence defines the four record families chesstty persists,
// shared by both storage backends (pkg/persistence/jsonstore and
// pkg/persistence/badgerstore).
package persistence

import (
	"github.com/benediktms/chesstty/pkg/analysis"
	"github.com/benediktms/chesstty/pkg/session"
)

// SuspendedSession is a full session snapshot plus history, persisted under
// id "session_<ts>" so a reconnecting client can fully restore it.
type SuspendedSession struct {
	RecordID string `json:"id"`
	Snapshot session.SessionSnapshot `json:"snapshot"`
}

func (r SuspendedSession) ID() string { return r.RecordID }

// FinishedGame is the terminal record of a completed game: its result, move
// list, and timing, persisted under id "game_<ts>".
type FinishedGame struct {
	RecordID string              `json:"id"`
	Result   string              `json:"result"`
	Moves    []session.MoveRecord `json:"moves"`
	StartFEN string              `json:"start_fen"`
}

func (r FinishedGame) ID() string { return r.RecordID }

// Position is a named FEN bookmark, persisted under id "pos_<ts>". Default
// positions (ReadOnly=true) are seeded at startup. Neither store checks
// ReadOnly: Delete removes a default position like any other record.
type Position struct {
	RecordID string `json:"id"`
	Name     string `json:"name"`
	FEN      string `json:"fen"`
	ReadOnly bool   `json:"read_only"`
}

func (r Position) ID() string { return r.RecordID }

// AdvancedGameAnalysisRecord wraps an analysis.AdvancedGameAnalysis artifact
// for persistence, the sink spec.md §4.4's pipeline output needs, following
// this system's original Rust store's extra review/advanced record family.
type AdvancedGameAnalysisRecord struct {
	RecordID string                         `json:"id"`
	Analysis analysis.AdvancedGameAnalysis `json:"analysis"`
}

func (r AdvancedGameAnalysisRecord) ID() string { return r.RecordID }
