package rules

// candidate is an internally generated move before legality (king-safety)
// filtering and SAN annotation.
type candidate struct {
	Move     Move
	Kind     MoveKind
	Piece    Piece
	Captured Piece
}

// PseudoLegalMoves returns every move the side to move could play ignoring
// whether it leaves that side's own king in check.
func (p Position) PseudoLegalMoves() []Move {
	var out []Move
	for _, c := range p.generateCandidates() {
		out = append(out, c.Move)
	}
	return out
}

func (p Position) generateCandidates() []candidate {
	var out []candidate
	t := p.turn
	for sq := Square(0); sq < 64; sq++ {
		c, piece, ok := p.Square(sq)
		if !ok || c != t {
			continue
		}
		switch piece {
		case Pawn:
			out = append(out, p.pawnCandidates(sq, t)...)
		case Knight:
			out = append(out, p.steppingCandidates(sq, piece, knightDeltas[:])...)
		case King:
			out = append(out, p.steppingCandidates(sq, piece, kingDeltas[:])...)
		case Bishop:
			out = append(out, p.slidingCandidates(sq, piece, bishopDirs)...)
		case Rook:
			out = append(out, p.slidingCandidates(sq, piece, rookDirs)...)
		case Queen:
			out = append(out, p.slidingCandidates(sq, piece, bishopDirs)...)
			out = append(out, p.slidingCandidates(sq, piece, rookDirs)...)
		}
	}
	out = append(out, p.castlingCandidates(t)...)
	return out
}

func (p Position) steppingCandidates(from Square, piece Piece, deltas [8][2]int) []candidate {
	var out []candidate
	mover, _, _ := p.Square(from)
	for _, to := range steppingAttacks(from, deltas[:]) {
		if oc, op, ok := p.Square(to); ok {
			if oc == mover {
				continue
			}
			out = append(out, candidate{Move: Move{From: from, To: to}, Kind: Capture, Piece: piece, Captured: op})
			continue
		}
		out = append(out, candidate{Move: Move{From: from, To: to}, Kind: Normal, Piece: piece})
	}
	return out
}

func (p Position) slidingCandidates(from Square, piece Piece, dirs [4][2]int) []candidate {
	var out []candidate
	mover, _, _ := p.Square(from)
	f0, r0 := int(from.File()), int(from.Rank())
	for _, d := range dirs {
		f, r := f0+d[0], r0+d[1]
		for onBoard(f, r) {
			to := NewSquare(File(f), Rank(r))
			if oc, op, ok := p.Square(to); ok {
				if oc != mover {
					out = append(out, candidate{Move: Move{From: from, To: to}, Kind: Capture, Piece: piece, Captured: op})
				}
				break
			}
			out = append(out, candidate{Move: Move{From: from, To: to}, Kind: Normal, Piece: piece})
			f += d[0]
			r += d[1]
		}
	}
	return out
}

func (p Position) pawnCandidates(from Square, t Color) []candidate {
	var out []candidate
	dir := 1
	startRank, promoRank := Rank(1), Rank(7)
	if t == Black {
		dir = -1
		startRank, promoRank = Rank(6), Rank(0)
	}

	f0, r0 := int(from.File()), int(from.Rank())

	addForward := func(to Square, kind MoveKind) {
		if to.Rank() == promoRank {
			for _, promo := range []Piece{Queen, Rook, Bishop, Knight} {
				out = append(out, candidate{Move: Move{From: from, To: to, Promotion: promo}, Kind: Promotion, Piece: Pawn})
			}
			return
		}
		out = append(out, candidate{Move: Move{From: from, To: to}, Kind: kind, Piece: Pawn})
	}

	if onBoard(f0, r0+dir) {
		one := NewSquare(File(f0), Rank(r0+dir))
		if p.IsEmpty(one) {
			addForward(one, Normal)
			if int(from.Rank()) == int(startRank) && onBoard(f0, r0+2*dir) {
				two := NewSquare(File(f0), Rank(r0+2*dir))
				if p.IsEmpty(two) {
					out = append(out, candidate{Move: Move{From: from, To: two}, Kind: DoublePawnPush, Piece: Pawn})
				}
			}
		}
	}

	for _, df := range []int{-1, 1} {
		f, r := f0+df, r0+dir
		if !onBoard(f, r) {
			continue
		}
		to := NewSquare(File(f), Rank(r))
		if oc, op, ok := p.Square(to); ok {
			if oc != t {
				if to.Rank() == promoRank {
					for _, promo := range []Piece{Queen, Rook, Bishop, Knight} {
						out = append(out, candidate{Move: Move{From: from, To: to, Promotion: promo}, Kind: CapturePromotion, Piece: Pawn, Captured: op})
					}
				} else {
					out = append(out, candidate{Move: Move{From: from, To: to}, Kind: Capture, Piece: Pawn, Captured: op})
				}
			}
			continue
		}
		if ep, ok := p.EnPassant(); ok && ep == to {
			out = append(out, candidate{Move: Move{From: from, To: to}, Kind: EnPassantCapture, Piece: Pawn, Captured: Pawn})
		}
	}
	return out
}

func (p Position) castlingCandidates(t Color) []candidate {
	var out []candidate
	rank := Rank(0)
	kingSide, queenSide := WhiteKingSideCastle, WhiteQueenSideCastle
	if t == Black {
		rank = Rank(7)
		kingSide, queenSide = BlackKingSideCastle, BlackQueenSideCastle
	}
	king := NewSquare(File(4), rank)
	if p.IsChecked(t) {
		return nil
	}

	if p.castling.IsAllowed(kingSide) {
		rook := NewSquare(File(7), rank)
		f1, g1 := NewSquare(File(5), rank), NewSquare(File(6), rank)
		if p.IsEmpty(f1) && p.IsEmpty(g1) &&
			!p.IsAttacked(f1, t.Opponent()) && !p.IsAttacked(g1, t.Opponent()) {
			out = append(out, candidate{Move: Move{From: king, To: rook}, Kind: KingSideCastle, Piece: King})
		}
	}
	if p.castling.IsAllowed(queenSide) {
		rook := NewSquare(File(0), rank)
		d1, c1, b1 := NewSquare(File(3), rank), NewSquare(File(2), rank), NewSquare(File(1), rank)
		if p.IsEmpty(d1) && p.IsEmpty(c1) && p.IsEmpty(b1) &&
			!p.IsAttacked(d1, t.Opponent()) && !p.IsAttacked(c1, t.Opponent()) {
			out = append(out, candidate{Move: Move{From: king, To: rook}, Kind: QueenSideCastle, Piece: King})
		}
	}
	return out
}

// LegalMoves returns every fully legal move for the side to move, annotated
// with SAN and check/checkmate flags.
func (p Position) LegalMoves() []LegalMove {
	t := p.turn
	var legal []candidate
	var nexts []Position
	for _, c := range p.generateCandidates() {
		next := p.applyRaw(c)
		if next.IsAttacked(next.KingSquare(t), t.Opponent()) {
			continue // leaves own king in check
		}
		legal = append(legal, c)
		nexts = append(nexts, next)
	}

	out := make([]LegalMove, len(legal))
	for i, c := range legal {
		next := nexts[i]
		isCheck := next.IsChecked(next.turn)
		isMate := isCheck && len(next.LegalMoves()) == 0
		out[i] = LegalMove{
			Move:        c.Move,
			Kind:        c.Kind,
			Piece:       c.Piece,
			Captured:    c.Captured,
			IsCheck:     isCheck,
			IsCheckmate: isMate,
		}
	}
	p.annotateSAN(out, legal)
	return out
}

// IsStalemate returns true iff the side to move has no legal moves and is
// not in check.
func (p Position) IsStalemate() bool {
	return !p.IsChecked(p.turn) && len(p.LegalMoves()) == 0
}

// IsCheckmate returns true iff the side to move has no legal moves and is in check.
func (p Position) IsCheckmate() bool {
	return p.IsChecked(p.turn) && len(p.LegalMoves()) == 0
}
