package rules

import "fmt"

// Move is pure algebraic coordinate notation: origin, destination, and the
// desired promotion piece, if any. It carries no legality information by
// itself; it becomes meaningful only relative to a Position.
type Move struct {
	From, To  Square
	Promotion Piece
}

// ParseMove parses a move in pure algebraic coordinate notation, such as
// "e2e4" or "a7a8q".
func ParseMove(str string) (Move, error) {
	runes := []rune(str)
	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: %q", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from square in %q: %w", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to square in %q: %w", str, err)
	}

	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion in %q", str)
		}
		return Move{From: from, To: to, Promotion: promo}, nil
	}
	return Move{From: from, To: to}, nil
}

func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

func (m Move) String() string {
	if m.Promotion.IsValid() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// MoveKind classifies an applied move for status and SAN purposes.
type MoveKind uint8

const (
	Normal MoveKind = iota
	DoublePawnPush
	EnPassantCapture
	KingSideCastle
	QueenSideCastle
	Capture
	Promotion
	CapturePromotion
)

// LegalMove is a Move annotated with the metadata that falls out of
// generating it against a specific Position.
type LegalMove struct {
	Move        Move
	Kind        MoveKind
	Piece       Piece
	Captured    Piece // NoPiece if not a capture
	SAN         string
	IsCheck     bool
	IsCheckmate bool
}

// AppliedMove is the record produced by applying a LegalMove: everything a
// caller needs to render or log the ply. Apply returns the resulting
// position alongside it and leaves FEN empty.
type AppliedMove struct {
	Move        Move
	Kind        MoveKind
	Piece       Piece
	Captured    Piece
	SAN         string
	FEN         string
	IsCheck     bool
	IsCheckmate bool
}
