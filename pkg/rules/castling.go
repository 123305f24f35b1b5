package rules

// ConvertUCICastling rewrites a UCI-style castling move (king moves two
// squares, e.g. "e1g1") into this package's internal king-to-rook
// representation (e.g. "e1h1"), by matching it against the position's own
// legal moves. Non-castling moves, and moves that already use the
// king-to-rook form, pass through unchanged.
//
// Ported from the reference engine adapter's UCI-to-internal move
// conversion: a UCI engine always reports castling as the king sliding two
// squares, regardless of how the rules oracle prefers to represent it
// internally.
func ConvertUCICastling(mv Move, legal []LegalMove) Move {
	rank := mv.From.Rank()
	if rank != 0 && rank != 7 {
		return mv
	}
	if mv.From.File() != 4 {
		return mv
	}

	var wantKind MoveKind
	switch mv.To.File() {
	case 6:
		wantKind = KingSideCastle
	case 2:
		wantKind = QueenSideCastle
	default:
		return mv
	}

	for _, lm := range legal {
		if lm.Kind == wantKind && lm.Move.From == mv.From {
			return lm.Move
		}
	}
	return mv
}
