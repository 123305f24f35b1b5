package fen_test

import (
	"testing"

	"github.com/benediktms/chesstty/pkg/rules/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"4k3/2pppp2/8/4P1K1/4PP2/3P4/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/5P2/PPPPP1PP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
	}

	for _, tt := range tests {
		pos, err := fen.Decode(tt)
		require.NoError(t, err)
		assert.Equal(t, tt, fen.Encode(pos))
	}
}

func TestDecodeInvalid(t *testing.T) {
	tests := []string{
		"",
		"invalid",
		"8/8/8/8/8/8/8/8 w KQkq - 0 1",   // no kings
		"k7/8/8/8/8/8/8/K7 w - - -1 1",   // negative halfmove
	}
	for _, tt := range tests {
		_, err := fen.Decode(tt)
		assert.Error(t, err)
	}
}
