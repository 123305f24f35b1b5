package rules

import "context"

// ChessRules is the boundary between the session runtime and chess logic:
// move legality, board mutation, and status classification. FEN encode/decode
// is a free function pair in the sibling rules/fen package, not part of this
// interface, matching how positions flow through the rest of the runtime.
// The session actor and analysis pipeline depend only on this interface;
// Default is the one concrete implementation the runtime ships.
type ChessRules interface {
	// LegalMoves returns every legal move for the side to move.
	LegalMoves(ctx context.Context, pos Position) []LegalMove
	// Apply validates and applies mv, returning the resulting position.
	Apply(ctx context.Context, pos Position, mv Move) (Position, AppliedMove, error)
	// Status classifies the position, given the repetition history.
	Status(ctx context.Context, pos Position, priorKeys []string) GameStatus
}

// Default is the ChessRules implementation backed by this package's own
// move generator. It is stateless: every method is a pure function of its
// arguments, so a single Default can be shared across every session.
type Default struct{}

func NewDefault() Default { return Default{} }

func (Default) LegalMoves(_ context.Context, pos Position) []LegalMove {
	return pos.LegalMoves()
}

func (Default) Apply(_ context.Context, pos Position, mv Move) (Position, AppliedMove, error) {
	return pos.Apply(mv)
}

func (Default) Status(_ context.Context, pos Position, priorKeys []string) GameStatus {
	return ClassifyStatus(pos, priorKeys)
}
