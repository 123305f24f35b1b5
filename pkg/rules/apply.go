package rules

import "fmt"

// applyRaw performs the board mutation for an already-generated candidate
// without any additional legality checking.
func (p Position) applyRaw(c candidate) Position {
	next := p
	next.enpassant = NoSquare

	mover, _, _ := p.Square(c.Move.From)
	next.board[c.Move.From] = occupant{Piece: NoPiece}

	switch c.Kind {
	case EnPassantCapture:
		capturedSq := NewSquare(c.Move.To.File(), c.Move.From.Rank())
		next.board[capturedSq] = occupant{Piece: NoPiece}
		next.board[c.Move.To] = occupant{Color: mover, Piece: Pawn}

	case KingSideCastle, QueenSideCastle:
		rank := c.Move.From.Rank()
		next.board[c.Move.To] = occupant{Piece: NoPiece} // rook's origin square
		var kingDest, rookDest File
		if c.Kind == KingSideCastle {
			kingDest, rookDest = File(6), File(5)
		} else {
			kingDest, rookDest = File(2), File(3)
		}
		next.board[NewSquare(kingDest, rank)] = occupant{Color: mover, Piece: King}
		next.board[NewSquare(rookDest, rank)] = occupant{Color: mover, Piece: Rook}

	case Promotion, CapturePromotion:
		next.board[c.Move.To] = occupant{Color: mover, Piece: c.Move.Promotion}

	case DoublePawnPush:
		next.board[c.Move.To] = occupant{Color: mover, Piece: Pawn}
		skipped := NewSquare(c.Move.From.File(), Rank((int(c.Move.From.Rank())+int(c.Move.To.Rank()))/2))
		next.enpassant = skipped

	default:
		next.board[c.Move.To] = occupant{Color: mover, Piece: c.Piece}
	}

	next.castling = updateCastlingRights(p.castling, c, mover)

	if c.Piece == Pawn || c.Captured != NoPiece {
		next.halfmove = 0
	} else {
		next.halfmove++
	}
	if p.turn == Black {
		next.fullmove++
	}
	next.turn = p.turn.Opponent()
	return next
}

func updateCastlingRights(rights Castling, c candidate, mover Color) Castling {
	lose := func(sq Square, r Castling) {
		if sq == c.Move.From || sq == c.Move.To {
			rights &^= r
		}
	}
	if c.Piece == King {
		if mover == White {
			rights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			rights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	lose(NewSquare(File(0), Rank(0)), WhiteQueenSideCastle)
	lose(NewSquare(File(7), Rank(0)), WhiteKingSideCastle)
	lose(NewSquare(File(0), Rank(7)), BlackQueenSideCastle)
	lose(NewSquare(File(7), Rank(7)), BlackKingSideCastle)
	return rights
}

// Apply validates mv against the position's legal moves and, if legal,
// returns the resulting position and the applied-move record. The SAN and
// check/checkmate fields are carried over from the matching LegalMove.
func (p Position) Apply(mv Move) (Position, AppliedMove, error) {
	legal := p.LegalMoves()
	for _, lm := range legal {
		if !lm.Move.Equals(mv) {
			continue
		}
		cands := p.generateCandidates()
		next := p.applyRaw(cands[matchCandidate(cands, mv)])
		return next, AppliedMove{
			Move:        lm.Move,
			Kind:        lm.Kind,
			Piece:       lm.Piece,
			Captured:    lm.Captured,
			SAN:         lm.SAN,
			IsCheck:     lm.IsCheck,
			IsCheckmate: lm.IsCheckmate,
		}, nil
	}
	return Position{}, AppliedMove{}, fmt.Errorf("illegal move: %v", mv)
}

func matchCandidate(cands []candidate, mv Move) int {
	for i, c := range cands {
		if c.Move.Equals(mv) {
			return i
		}
	}
	return -1
}
