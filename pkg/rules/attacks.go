package rules

var knightDeltas = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingDeltas = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
var rookDirs = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func onBoard(f, r int) bool {
	return f >= 0 && f < int(NumFiles) && r >= 0 && r < int(NumRanks)
}

func steppingAttacks(from Square, deltas [][2]int) []Square {
	f0, r0 := int(from.File()), int(from.Rank())
	var out []Square
	for _, d := range deltas {
		f, r := f0+d[0], r0+d[1]
		if onBoard(f, r) {
			out = append(out, NewSquare(File(f), Rank(r)))
		}
	}
	return out
}

func (p Position) slidingAttacks(from Square, dirs [4][2]int) []Square {
	f0, r0 := int(from.File()), int(from.Rank())
	var out []Square
	for _, d := range dirs {
		f, r := f0+d[0], r0+d[1]
		for onBoard(f, r) {
			sq := NewSquare(File(f), Rank(r))
			out = append(out, sq)
			if !p.IsEmpty(sq) {
				break
			}
			f += d[0]
			r += d[1]
		}
	}
	return out
}

func pawnAttackSquares(from Square, c Color) []Square {
	dir := 1
	if c == Black {
		dir = -1
	}
	return steppingAttacks(from, [][2]int{{1, dir}, {-1, dir}})
}

// attacksFrom returns the squares attacked by the piece sitting on sq
// (assumed non-empty). Own-piece-occupied squares are included, since this
// is used for king-safety and attacker-map queries as well as move
// generation filtering.
func (p Position) attacksFrom(sq Square) []Square {
	c, piece, ok := p.Square(sq)
	if !ok {
		return nil
	}
	switch piece {
	case Pawn:
		return pawnAttackSquares(sq, c)
	case Knight:
		return steppingAttacks(sq, knightDeltas[:])
	case King:
		return steppingAttacks(sq, kingDeltas[:])
	case Bishop:
		return p.slidingAttacks(sq, bishopDirs)
	case Rook:
		return p.slidingAttacks(sq, rookDirs)
	case Queen:
		out := p.slidingAttacks(sq, bishopDirs)
		return append(out, p.slidingAttacks(sq, rookDirs)...)
	default:
		return nil
	}
}

// IsAttacked returns true iff sq is attacked by a piece of color by.
func (p Position) IsAttacked(sq Square, by Color) bool {
	for origin := Square(0); origin < 64; origin++ {
		c, piece, ok := p.Square(origin)
		if !ok || c != by || piece == NoPiece {
			continue
		}
		for _, a := range p.attacksFrom(origin) {
			if a == sq {
				return true
			}
		}
	}
	return false
}

// Attackers returns the origin squares of every piece of color by attacking sq.
func (p Position) Attackers(sq Square, by Color) []Square {
	var out []Square
	for origin := Square(0); origin < 64; origin++ {
		c, piece, ok := p.Square(origin)
		if !ok || c != by || piece == NoPiece {
			continue
		}
		for _, a := range p.attacksFrom(origin) {
			if a == sq {
				out = append(out, origin)
				break
			}
		}
	}
	return out
}

// IsChecked returns true iff color c's king is currently attacked.
func (p Position) IsChecked(c Color) bool {
	king := p.KingSquare(c)
	if !king.IsValid() {
		return false
	}
	return p.IsAttacked(king, c.Opponent())
}

// HasInsufficientMaterial returns true iff neither side has enough material
// to deliver checkmate: K v K, K+N v K, K+B v K, or K+B v K+B with
// same-colored bishops.
func (p Position) HasInsufficientMaterial() bool {
	var minor [NumColors]int  // count of bishops+knights
	var bishopSq [NumColors]Square
	for sq := Square(0); sq < 64; sq++ {
		c, piece, ok := p.Square(sq)
		if !ok {
			continue
		}
		switch piece {
		case Pawn, Rook, Queen:
			return false
		case Knight:
			minor[c]++
		case Bishop:
			minor[c]++
			bishopSq[c] = sq
		}
	}
	if minor[White] == 0 && minor[Black] == 0 {
		return true
	}
	if minor[White]+minor[Black] == 1 {
		return true // lone minor vs bare king
	}
	if minor[White] == 1 && minor[Black] == 1 {
		_, wp, _ := p.Square(bishopSq[White])
		_, bp, _ := p.Square(bishopSq[Black])
		if wp == Bishop && bp == Bishop {
			return squareColor(bishopSq[White]) == squareColor(bishopSq[Black])
		}
	}
	return false
}

func squareColor(sq Square) int {
	return (int(sq.File()) + int(sq.Rank())) % 2
}
