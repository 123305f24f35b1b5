package rules

import "strings"

// DrawReason classifies why a game is a draw.
type DrawReason uint8

const (
	NoDraw DrawReason = iota
	Stalemate
	InsufficientMaterial
	FiftyMove
	ThreefoldRepetition
)

func (r DrawReason) String() string {
	switch r {
	case Stalemate:
		return "stalemate"
	case InsufficientMaterial:
		return "insufficient material"
	case FiftyMove:
		return "fifty-move rule"
	case ThreefoldRepetition:
		return "threefold repetition"
	default:
		return "-"
	}
}

// GameStatus is the classified status of a position: either still ongoing,
// decided, or a draw (with a reason).
type GameStatus struct {
	Result     Result
	DrawReason DrawReason
}

func (s GameStatus) IsOngoing() bool {
	return s.Result == Undecided
}

func (s GameStatus) String() string {
	switch s.Result {
	case Undecided:
		return "ongoing"
	case WhiteWins:
		return "white wins"
	case BlackWins:
		return "black wins"
	case Draw:
		return "draw (" + s.DrawReason.String() + ")"
	default:
		return "?"
	}
}

// PositionKey returns a key identifying the position for threefold
// repetition purposes: piece placement, side to move, castling rights and
// en passant target, but not the move counters (per FIDE repetition rules).
func (p Position) PositionKey() string {
	var sb strings.Builder
	for sq := Square(0); sq < 64; sq++ {
		if c, piece, ok := p.Square(sq); ok {
			sb.WriteString(printPiece(c, piece))
		} else {
			sb.WriteByte('-')
		}
	}
	sb.WriteByte(':')
	sb.WriteString(p.turn.String())
	sb.WriteByte(':')
	sb.WriteString(p.castling.String())
	sb.WriteByte(':')
	if ep, ok := p.EnPassant(); ok {
		sb.WriteString(ep.String())
	} else {
		sb.WriteByte('-')
	}
	return sb.String()
}

// ClassifyStatus determines the game status of p, given the position keys of
// every position reached so far in the game (including p itself) for
// threefold-repetition purposes. Checkmate, stalemate, insufficient material
// and the fifty-move rule are pure functions of p alone.
func ClassifyStatus(p Position, priorKeys []string) GameStatus {
	inCheck := p.IsChecked(p.turn)
	if len(p.LegalMoves()) == 0 {
		if inCheck {
			if p.turn == White {
				return GameStatus{Result: BlackWins}
			}
			return GameStatus{Result: WhiteWins}
		}
		return GameStatus{Result: Draw, DrawReason: Stalemate}
	}
	if p.HasInsufficientMaterial() {
		return GameStatus{Result: Draw, DrawReason: InsufficientMaterial}
	}
	if p.HalfmoveClock() >= 100 {
		return GameStatus{Result: Draw, DrawReason: FiftyMove}
	}

	key := p.PositionKey()
	count := 0
	for _, k := range priorKeys {
		if k == key {
			count++
		}
	}
	if count >= 3 {
		return GameStatus{Result: Draw, DrawReason: ThreefoldRepetition}
	}
	return GameStatus{Result: Undecided}
}
