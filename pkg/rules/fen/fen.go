// Package fen reads and writes chess positions in Forsyth-Edwards Notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/benediktms/chesstty/pkg/rules"
)

const Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Decode parses a FEN record into a Position.
func Decode(fen string) (rules.Position, error) {
	parts := strings.Split(strings.TrimSpace(fen), " ")
	if len(parts) != 6 {
		return rules.Position{}, fmt.Errorf("invalid number of sections in FEN: %q", fen)
	}

	// (1) Piece placement, rank 8 down to rank 1, file a through h per rank.

	var placements []rules.Placement

	rank, file := 7, 0
	for _, r := range []rune(parts[0]) {
		switch {
		case r == '/':
			if file != 8 {
				return rules.Position{}, fmt.Errorf("invalid rank length in FEN: %q", fen)
			}
			rank--
			file = 0

		case unicode.IsDigit(r):
			file += int(r - '0')

		case unicode.IsLetter(r):
			color, piece, ok := parsePiece(r)
			if !ok {
				return rules.Position{}, fmt.Errorf("invalid piece %q in FEN: %q", r, fen)
			}
			if rank < 0 || file > 7 {
				return rules.Position{}, fmt.Errorf("invalid placement in FEN: %q", fen)
			}
			sq := rules.NewSquare(rules.File(file), rules.Rank(rank))
			placements = append(placements, rules.Placement{Square: sq, Color: color, Piece: piece})
			file++

		default:
			return rules.Position{}, fmt.Errorf("invalid character in FEN: %q", fen)
		}
	}
	if rank != 0 || file != 8 {
		return rules.Position{}, fmt.Errorf("invalid number of squares in FEN: %q", fen)
	}

	// (2) Active color.

	turn, ok := parseColor(parts[1])
	if !ok {
		return rules.Position{}, fmt.Errorf("invalid active color in FEN: %q", fen)
	}

	// (3) Castling availability.

	castling, ok := parseCastling(parts[2])
	if !ok {
		return rules.Position{}, fmt.Errorf("invalid castling in FEN: %q", fen)
	}

	// (4) En passant target square.

	ep := rules.NoSquare
	if parts[3] != "-" {
		sq, err := rules.ParseSquareStr(parts[3])
		if err != nil {
			return rules.Position{}, fmt.Errorf("invalid en passant in FEN: %q", fen)
		}
		ep = sq
	}

	// (5) Halfmove clock.

	hm, err := strconv.Atoi(parts[4])
	if err != nil || hm < 0 {
		return rules.Position{}, fmt.Errorf("invalid halfmove clock in FEN: %q", fen)
	}

	// (6) Fullmove number.

	fm, err := strconv.Atoi(parts[5])
	if err != nil || fm < 1 {
		return rules.Position{}, fmt.Errorf("invalid fullmove number in FEN: %q", fen)
	}

	return rules.NewPosition(placements, turn, castling, ep, hm, fm)
}

// Encode renders a Position as a FEN record.
func Encode(pos rules.Position) string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		blanks := 0
		for f := 0; f < 8; f++ {
			sq := rules.NewSquare(rules.File(f), rules.Rank(r))
			color, piece, ok := pos.Square(sq)
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(printPiece(color, piece))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > 0 {
			sb.WriteString("/")
		}
	}

	turn := printColor(pos.Turn())
	castling := pos.Castling().String()

	ep := "-"
	if sq, ok := pos.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), turn, castling, ep, pos.HalfmoveClock(), pos.FullmoveNumber())
}

func parseCastling(str string) (rules.Castling, bool) {
	var ret rules.Castling
	if str == "-" {
		return ret, true
	}
	for _, r := range []rune(str) {
		switch r {
		case 'K':
			ret |= rules.WhiteKingSideCastle
		case 'Q':
			ret |= rules.WhiteQueenSideCastle
		case 'k':
			ret |= rules.BlackKingSideCastle
		case 'q':
			ret |= rules.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func parseColor(str string) (rules.Color, bool) {
	switch str {
	case "w", "W":
		return rules.White, true
	case "b", "B":
		return rules.Black, true
	default:
		return 0, false
	}
}

func printColor(c rules.Color) string {
	if c == rules.White {
		return "w"
	}
	return "b"
}

func parsePiece(r rune) (rules.Color, rules.Piece, bool) {
	p, ok := rules.ParsePiece(r)
	if !ok {
		return 0, 0, false
	}
	if unicode.IsUpper(r) {
		return rules.White, p, true
	}
	return rules.Black, p, true
}

func printPiece(c rules.Color, p rules.Piece) rune {
	r := []rune(p.String())[0]
	if c == rules.White {
		r = unicode.ToUpper(r)
	}
	return r
}
