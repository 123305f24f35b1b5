package persistence

import "github.com/benediktms/chesstty/pkg/rules/fen"

// DefaultPositions are the bookmarks, flagged ReadOnly, seeded into the
// database at startup: the initial position plus a handful of standard
// openings.
func DefaultPositions() []Position {
	return []Position{
		{RecordID: "pos_default_startpos", Name: "Starting position", FEN: fen.Initial, ReadOnly: true},
		{RecordID: "pos_default_italian", Name: "Italian Game", FEN: "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3", ReadOnly: true},
		{RecordID: "pos_default_sicilian", Name: "Sicilian Defense", FEN: "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2", ReadOnly: true},
		{RecordID: "pos_default_french", Name: "French Defense", FEN: "rnbqkbnr/pppp1ppp/4p3/8/3PP3/8/PPP2PPP/RNBQKBNR b KQkq d3 0 2", ReadOnly: true},
		{RecordID: "pos_default_ruy_lopez", Name: "Ruy Lopez", FEN: "r1bqkbnr/pppp1ppp/2n5/1B2p3/4P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3", ReadOnly: true},
	}
}
