package rules

import "fmt"

// annotateSAN fills in the SAN field of every LegalMove in out, given the
// parallel candidate slice from the same generation pass (for disambiguation
// against other moves of the same piece to the same destination).
func (p Position) annotateSAN(out []LegalMove, cands []candidate) {
	for i := range out {
		out[i].SAN = p.formatSAN(out[i], cands)
	}
}

func (p Position) formatSAN(lm LegalMove, cands []candidate) string {
	var san string
	switch lm.Kind {
	case KingSideCastle:
		san = "O-O"
	case QueenSideCastle:
		san = "O-O-O"
	default:
		san = p.formatPieceSAN(lm, cands)
	}

	if lm.IsCheckmate {
		san += "#"
	} else if lm.IsCheck {
		san += "+"
	}
	return san
}

func (p Position) formatPieceSAN(lm LegalMove, cands []candidate) string {
	isCapture := lm.Kind == Capture || lm.Kind == CapturePromotion || lm.Kind == EnPassantCapture

	if lm.Piece == Pawn {
		var sb string
		if isCapture {
			sb = lm.Move.From.File().String() + "x"
		}
		sb += lm.Move.To.String()
		if lm.Kind == Promotion || lm.Kind == CapturePromotion {
			sb += "=" + upper(lm.Move.Promotion.String())
		}
		return sb
	}

	letter := upper(lm.Piece.String())
	disambig := p.disambiguate(lm, cands)
	capture := ""
	if isCapture {
		capture = "x"
	}
	return fmt.Sprintf("%v%v%v%v", letter, disambig, capture, lm.Move.To)
}

func upper(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}

// disambiguate returns the minimal file/rank/square prefix needed to
// distinguish lm from other legal moves of the same piece type landing on
// the same destination square.
func (p Position) disambiguate(lm LegalMove, cands []candidate) string {
	var sameFile, sameRank, any bool
	for _, c := range cands {
		if c.Piece != lm.Piece || c.Move.To != lm.Move.To || c.Move.From == lm.Move.From {
			continue
		}
		mover, _, _ := p.Square(c.Move.From)
		lmMover, _, _ := p.Square(lm.Move.From)
		if mover != lmMover {
			continue // different color piece can't actually collide here, but guard anyway
		}
		any = true
		if c.Move.From.File() == lm.Move.From.File() {
			sameFile = true
		}
		if c.Move.From.Rank() == lm.Move.From.Rank() {
			sameRank = true
		}
	}
	if !any {
		return ""
	}
	switch {
	case !sameFile:
		return lm.Move.From.File().String()
	case !sameRank:
		return lm.Move.From.Rank().String()
	default:
		return lm.Move.From.String()
	}
}
