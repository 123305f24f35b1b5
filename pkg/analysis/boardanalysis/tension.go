package boardanalysis

import "github.com/benediktms/chesstty/pkg/rules"

// PositionTensionMetrics summarizes how much contact is between the two
// armies: pairs of pieces that mutually attack each other, how many pieces
// on each side are hanging, and a combined scalar score.
type PositionTensionMetrics struct {
	MutualAttackPairs int
	HangingWhite      int
	HangingBlack      int
	Score             float64
}

// EvaluateTension computes PositionTensionMetrics for pos.
func EvaluateTension(pos rules.Position) PositionTensionMetrics {
	var mutual, hangingWhite, hangingBlack int

	for sq := rules.Square(0); sq < 64; sq++ {
		c, piece, ok := pos.Square(sq)
		if !ok || piece == rules.NoPiece {
			continue
		}

		attackers := pos.Attackers(sq, c.Opponent())
		defenders := pos.Attackers(sq, c)
		if len(attackers) > 0 && len(defenders) == 0 {
			if c == rules.White {
				hangingWhite++
			} else {
				hangingBlack++
			}
		}

		if c == rules.White {
			for _, a := range attackers {
				if ac, ap, ok := pos.Square(a); ok && ac == rules.Black && ap != rules.NoPiece {
					if len(pos.Attackers(a, rules.White)) > 0 {
						mutual++
					}
				}
			}
		}
	}

	score := float64(mutual) + 0.5*float64(hangingWhite+hangingBlack)
	return PositionTensionMetrics{
		MutualAttackPairs: mutual,
		HangingWhite:      hangingWhite,
		HangingBlack:      hangingBlack,
		Score:             score,
	}
}
