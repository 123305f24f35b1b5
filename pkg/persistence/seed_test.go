package persistence

import (
	"testing"

	"github.com/benediktms/chesstty/pkg/rules/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPositionsAreReadOnlyAndDecodable(t *testing.T) {
	positions := DefaultPositions()
	require.NotEmpty(t, positions)

	seen := make(map[string]bool)
	for _, p := range positions {
		assert.True(t, p.ReadOnly, "seeded position %v must be read-only", p.RecordID)
		assert.Equal(t, p.RecordID, p.ID())
		assert.False(t, seen[p.RecordID], "duplicate seeded id %v", p.RecordID)
		seen[p.RecordID] = true

		_, err := fen.Decode(p.FEN)
		assert.NoError(t, err, "seeded FEN for %v must decode", p.Name)
	}
}

func TestRecordIDMethods(t *testing.T) {
	assert.Equal(t, "session_1", SuspendedSession{RecordID: "session_1"}.ID())
	assert.Equal(t, "game_1", FinishedGame{RecordID: "game_1"}.ID())
	assert.Equal(t, "pos_1", Position{RecordID: "pos_1"}.ID())
	assert.Equal(t, "analysis_1", AdvancedGameAnalysisRecord{RecordID: "analysis_1"}.ID())
}
