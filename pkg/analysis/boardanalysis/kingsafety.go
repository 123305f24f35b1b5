package boardanalysis

import "github.com/benediktms/chesstty/pkg/rules"

// PositionKingSafety summarizes the shelter and exposure of one color's
// king: how many enemy pieces bear on the ring of squares around it, how
// many of its own defend that ring, whether its pawn shield is intact, and
// whether a file adjacent to it is open.
type PositionKingSafety struct {
	KingSquare        rules.Square
	AttackersInRing   int
	DefendersInRing   int
	PawnShieldIntact  bool
	OpenFilesAdjacent int
	Score             float64
}

const (
	weightAttacker  = -2.0
	weightDefender  = 1.0
	weightShield    = 1.5
	weightOpenFile  = -1.0
)

// EvaluateKingSafety computes PositionKingSafety for color c in pos.
func EvaluateKingSafety(pos rules.Position, c rules.Color) PositionKingSafety {
	king := pos.KingSquare(c)
	if king == rules.NoSquare {
		return PositionKingSafety{KingSquare: rules.NoSquare}
	}

	ring := kingRing(king)
	var attackers, defenders int
	for _, sq := range ring {
		attackers += len(pos.Attackers(sq, c.Opponent()))
		defenders += len(pos.Attackers(sq, c))
	}

	shield := pawnShieldIntact(pos, king, c)
	openFiles := openFilesAdjacent(pos, king)

	score := float64(attackers)*weightAttacker + float64(defenders)*weightDefender + float64(openFiles)*weightOpenFile
	if shield {
		score += weightShield
	}

	return PositionKingSafety{
		KingSquare:        king,
		AttackersInRing:   attackers,
		DefendersInRing:   defenders,
		PawnShieldIntact:  shield,
		OpenFilesAdjacent: openFiles,
		Score:             score,
	}
}

func kingRing(king rules.Square) []rules.Square {
	var ring []rules.Square
	kf, kr := int(king.File()), int(king.Rank())
	for df := -1; df <= 1; df++ {
		for dr := -1; dr <= 1; dr++ {
			if df == 0 && dr == 0 {
				continue
			}
			f, r := kf+df, kr+dr
			if f < 0 || f > 7 || r < 0 || r > 7 {
				continue
			}
			ring = append(ring, rules.NewSquare(rules.File(f), rules.Rank(r)))
		}
	}
	return ring
}

// pawnShieldIntact checks for own pawns on the three squares one rank in
// front of the king (the classic shield).
func pawnShieldIntact(pos rules.Position, king rules.Square, c rules.Color) bool {
	dir := 1
	if c == rules.Black {
		dir = -1
	}
	kf, kr := int(king.File()), int(king.Rank())
	shieldRank := kr + dir
	if shieldRank < 0 || shieldRank > 7 {
		return false
	}
	count := 0
	for df := -1; df <= 1; df++ {
		f := kf + df
		if f < 0 || f > 7 {
			continue
		}
		col, piece, ok := pos.Square(rules.NewSquare(rules.File(f), rules.Rank(shieldRank)))
		if ok && col == c && piece == rules.Pawn {
			count++
		}
	}
	return count >= 2
}

func openFilesAdjacent(pos rules.Position, king rules.Square) int {
	kf := int(king.File())
	count := 0
	for df := -1; df <= 1; df++ {
		f := kf + df
		if f < 0 || f > 7 {
			continue
		}
		hasPawn := false
		for r := 0; r < 8; r++ {
			_, piece, ok := pos.Square(rules.NewSquare(rules.File(f), rules.Rank(r)))
			if ok && piece == rules.Pawn {
				hasPawn = true
				break
			}
		}
		if !hasPawn {
			count++
		}
	}
	return count
}
