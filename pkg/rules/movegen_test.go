package rules_test

import (
	"testing"

	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/benediktms/chesstty/pkg/rules/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialPositionHas20LegalMoves(t *testing.T) {
	pos, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	assert.Len(t, pos.LegalMoves(), 20)
}

func TestScholarsMate(t *testing.T) {
	// 1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6?? 4. Qxf7#
	moves := []string{"e2e4", "e7e5", "d1h5", "b8c6", "f1c4", "g8f6", "h5f7"}

	pos, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	var priorKeys []string
	for _, m := range moves {
		mv, err := rules.ParseMove(m)
		require.NoError(t, err)

		next, applied, err := pos.Apply(mv)
		require.NoError(t, err, "move %v", m)
		priorKeys = append(priorKeys, next.PositionKey())
		pos = next

		if m == "h5f7" {
			assert.True(t, applied.IsCheckmate)
		}
	}

	status := rules.ClassifyStatus(pos, priorKeys)
	assert.Equal(t, rules.WhiteWins, status.Result)
}

func TestIllegalMoveRejected(t *testing.T) {
	pos, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	_, _, err = pos.Apply(rules.Move{From: mustSquare("e2"), To: mustSquare("e5")})
	assert.Error(t, err)
}

func TestCastlingAppliesInKingToRookForm(t *testing.T) {
	pos, err := fen.Decode("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	// UCI reports castling as the king moving two squares.
	uciMove := rules.Move{From: mustSquare("e1"), To: mustSquare("g1")}
	converted := rules.ConvertUCICastling(uciMove, pos.LegalMoves())
	assert.Equal(t, mustSquare("h1"), converted.To)

	next, applied, err := pos.Apply(converted)
	require.NoError(t, err)
	assert.Equal(t, rules.KingSideCastle, applied.Kind)
	assert.Equal(t, "O-O", applied.SAN)

	_, piece, ok := next.Square(mustSquare("g1"))
	require.True(t, ok)
	assert.Equal(t, rules.King, piece)

	_, piece, ok = next.Square(mustSquare("f1"))
	require.True(t, ok)
	assert.Equal(t, rules.Rook, piece)
}

func TestInsufficientMaterial(t *testing.T) {
	pos, err := fen.Decode("k7/8/8/8/8/8/8/K7 w - - 0 1")
	require.NoError(t, err)
	assert.True(t, pos.HasInsufficientMaterial())

	pos, err = fen.Decode("k7/8/8/8/8/8/8/KQ6 w - - 0 1")
	require.NoError(t, err)
	assert.False(t, pos.HasInsufficientMaterial())
}

func mustSquare(s string) rules.Square {
	sq, err := rules.ParseSquareStr(s)
	if err != nil {
		panic(err)
	}
	return sq
}
