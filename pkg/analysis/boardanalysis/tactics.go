// Package boardanalysis implements the pure, position-only metrics the
// analysis pipeline annotates every ply with: tactical motifs, king safety,
// and piece tension. Every function here takes a rules.Position and nothing
// else; none of them touch the engine or session state.
package boardanalysis

import "github.com/benediktms/chesstty/pkg/rules"

// TacticalTagKind enumerates the tactical motif kinds. DetectTactics produces
// Fork, Pin, Skewer, HangingPiece, BackRankWeakness and MateThreat;
// DiscoveredAttack, DoubleAttack, Sacrifice and Zwischenzug have no detector
// and are never produced.
type TacticalTagKind uint8

const (
	Fork TacticalTagKind = iota
	Pin
	Skewer
	DiscoveredAttack
	DoubleAttack
	HangingPiece
	Sacrifice
	Zwischenzug
	BackRankWeakness
	MateThreat
)

func (k TacticalTagKind) String() string {
	switch k {
	case Fork:
		return "fork"
	case Pin:
		return "pin"
	case Skewer:
		return "skewer"
	case DiscoveredAttack:
		return "discovered_attack"
	case DoubleAttack:
		return "double_attack"
	case HangingPiece:
		return "hanging_piece"
	case Sacrifice:
		return "sacrifice"
	case Zwischenzug:
		return "zwischenzug"
	case BackRankWeakness:
		return "back_rank_weakness"
	default:
		return "mate_threat"
	}
}

// TacticalTag records one detected motif: who is attacking, which pieces are
// affected, and the confidence of the match, derived from how many
// independent predicates agreed.
type TacticalTag struct {
	Kind          TacticalTagKind
	Attacker      rules.Square
	Victims       []rules.Square
	TargetSquare  rules.Square
	Confidence    float64
	Evidence      string
}

var pieceValue = map[rules.Piece]int{
	rules.Pawn: 1, rules.Knight: 3, rules.Bishop: 3, rules.Rook: 5, rules.Queen: 9, rules.King: 100,
}

// DetectTactics scans pos for each motif that has a detector (see
// TacticalTagKind) which the mover (the side whose turn it
// is NOT, i.e. the side that just moved into this position) might be
// exploiting against the opponent, by querying the rules oracle's attacker
// maps and reasoning over piece placement and ray relationships.
func DetectTactics(pos rules.Position) []TacticalTag {
	var tags []TacticalTag
	mover := pos.Turn().Opponent()
	victim := pos.Turn()

	tags = append(tags, detectForks(pos, mover, victim)...)
	tags = append(tags, detectPinsAndSkewers(pos, mover, victim)...)
	tags = append(tags, detectHangingPieces(pos, victim)...)
	tags = append(tags, detectBackRankWeakness(pos, victim)...)
	if pos.IsChecked(victim) {
		tags = append(tags, TacticalTag{Kind: MateThreat, TargetSquare: pos.KingSquare(victim), Confidence: 1, Evidence: "side to move is in check"})
	}
	return tags
}

// detectForks finds attacker pieces that simultaneously attack two or more
// enemy pieces worth >=3 points (a knight fork is the canonical case, but
// any piece attacking multiple valuable targets counts).
func detectForks(pos rules.Position, mover, victim rules.Color) []TacticalTag {
	var tags []TacticalTag
	for sq := rules.Square(0); sq < 64; sq++ {
		c, piece, ok := pos.Square(sq)
		if !ok || c != mover {
			continue
		}
		var victims []rules.Square
		for _, target := range attackTargets(pos, sq, piece, mover) {
			tc, tp, ok := pos.Square(target)
			if !ok || tc != victim {
				continue
			}
			if pieceValue[tp] >= 3 {
				victims = append(victims, target)
			}
		}
		if len(victims) >= 2 {
			tags = append(tags, TacticalTag{
				Kind: Fork, Attacker: sq, Victims: victims,
				Confidence: minF(1, 0.5+0.25*float64(len(victims))),
				Evidence:   "single piece attacks multiple valuable targets",
			})
		}
	}
	return tags
}

// detectPinsAndSkewers walks each sliding piece's rays; if the first enemy
// piece on a ray is followed by a more valuable (pin) or less valuable
// (skewer) enemy piece with nothing between, the ray is tagged.
func detectPinsAndSkewers(pos rules.Position, mover, victim rules.Color) []TacticalTag {
	var tags []TacticalTag
	for sq := rules.Square(0); sq < 64; sq++ {
		c, piece, ok := pos.Square(sq)
		if !ok || c != mover {
			continue
		}
		dirs := slidingDirsFor(piece)
		if dirs == nil {
			continue
		}
		for _, d := range dirs {
			line := rayHits(pos, sq, d)
			if len(line) < 2 {
				continue
			}
			first, second := line[0], line[1]
			if fc, _, ok := pos.Square(first); !ok || fc != victim {
				continue
			}
			sc, sp, ok := pos.Square(second)
			if !ok || sc != victim {
				continue
			}
			if pieceValue[sp] > pieceValue[fpPiece(pos, first)] {
				tags = append(tags, TacticalTag{
					Kind: Pin, Attacker: sq, Victims: []rules.Square{first},
					TargetSquare: second, Confidence: 0.85,
					Evidence: "ray through a lesser piece onto a more valuable one",
				})
			} else {
				tags = append(tags, TacticalTag{
					Kind: Skewer, Attacker: sq, Victims: []rules.Square{first},
					TargetSquare: second, Confidence: 0.8,
					Evidence: "ray through a more valuable piece onto a lesser one",
				})
			}
		}
	}
	return tags
}

func fpPiece(pos rules.Position, sq rules.Square) rules.Piece {
	_, p, _ := pos.Square(sq)
	return p
}

// detectHangingPieces flags any piece of victim's color that is attacked at
// least once and defended zero times.
func detectHangingPieces(pos rules.Position, victim rules.Color) []TacticalTag {
	var tags []TacticalTag
	for sq := rules.Square(0); sq < 64; sq++ {
		c, piece, ok := pos.Square(sq)
		if !ok || c != victim || piece == rules.NoPiece {
			continue
		}
		attackers := pos.Attackers(sq, victim.Opponent())
		defenders := pos.Attackers(sq, victim)
		if len(attackers) > 0 && len(defenders) == 0 {
			tags = append(tags, TacticalTag{
				Kind: HangingPiece, Victims: []rules.Square{sq}, TargetSquare: sq,
				Confidence: minF(1, 0.5+0.2*float64(len(attackers))),
				Evidence:   "attacked with no defenders",
			})
		}
	}
	return tags
}

// detectBackRankWeakness flags a king on its back rank whose escape squares
// on the next rank are all occupied or attacked, a classic mating-net
// precursor.
func detectBackRankWeakness(pos rules.Position, victim rules.Color) []TacticalTag {
	king := pos.KingSquare(victim)
	if king == rules.NoSquare {
		return nil
	}
	backRank := rules.Rank(0)
	if victim == rules.Black {
		backRank = rules.Rank(7)
	}
	if king.Rank() != backRank {
		return nil
	}

	escapeRank := rules.Rank(1)
	if victim == rules.Black {
		escapeRank = rules.Rank(6)
	}
	for df := -1; df <= 1; df++ {
		f := int(king.File()) + df
		if f < 0 || f > 7 {
			continue
		}
		sq := rules.NewSquare(rules.File(f), escapeRank)
		if pos.IsEmpty(sq) && !pos.IsAttacked(sq, victim.Opponent()) {
			return nil
		}
	}
	return []TacticalTag{{
		Kind: BackRankWeakness, TargetSquare: king, Confidence: 0.7,
		Evidence: "king confined to back rank with no escape square",
	}}
}

func attackTargets(pos rules.Position, from rules.Square, piece rules.Piece, c rules.Color) []rules.Square {
	var out []rules.Square
	for sq := rules.Square(0); sq < 64; sq++ {
		if sq == from {
			continue
		}
		for _, a := range pos.Attackers(sq, c) {
			if a == from {
				out = append(out, sq)
				break
			}
		}
	}
	return out
}

func slidingDirsFor(piece rules.Piece) [][2]int {
	switch piece {
	case rules.Bishop:
		return [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	case rules.Rook:
		return [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	case rules.Queen:
		return [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	default:
		return nil
	}
}

// rayHits returns the squares of the first two occupied squares along
// direction d from sq, for pin/skewer detection.
func rayHits(pos rules.Position, sq rules.Square, d [2]int) []rules.Square {
	var hits []rules.Square
	f, r := int(sq.File()), int(sq.Rank())
	for {
		f += d[0]
		r += d[1]
		if f < 0 || f > 7 || r < 0 || r > 7 {
			break
		}
		cur := rules.NewSquare(rules.File(f), rules.Rank(r))
		if !pos.IsEmpty(cur) {
			hits = append(hits, cur)
			if len(hits) == 2 {
				break
			}
		}
	}
	return hits
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
