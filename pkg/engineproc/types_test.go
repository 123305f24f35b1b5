package engineproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGoParamsUCI(t *testing.T) {
	assert.Equal(t, "go infinite", GoParams{Infinite: true}.uci())
	assert.Equal(t, "go movetime 500", GoParams{MoveTimeMillis: 500}.uci())
	assert.Equal(t, "go depth 12", GoParams{Depth: 12}.uci())
	assert.Equal(t, "go", GoParams{}.uci())
}

func TestParseInfo(t *testing.T) {
	info, ok := parseInfo([]string{"depth", "12", "score", "cp", "34", "nodes", "10000", "time", "250", "pv", "e2e4", "e7e5"})
	assert.True(t, ok)
	assert.Equal(t, 12, info.Depth)
	assert.Equal(t, Score{Kind: Centipawns, Value: 34}, info.Score)
	assert.Equal(t, uint64(10000), info.Nodes)
	assert.Equal(t, 250, info.TimeMs)
	assert.Equal(t, []string{"e2e4", "e7e5"}, info.PV)
}

func TestParseInfoMate(t *testing.T) {
	info, ok := parseInfo([]string{"depth", "5", "score", "mate", "3"})
	assert.True(t, ok)
	assert.Equal(t, Score{Kind: Mate, Value: 3}, info.Score)
}
