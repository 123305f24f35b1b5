package analysis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/benediktms/chesstty/pkg/rules/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyThresholds(t *testing.T) {
	assert.Equal(t, Best, Classify(0))
	assert.Equal(t, Best, Classify(9))
	assert.Equal(t, Excellent, Classify(10))
	assert.Equal(t, Excellent, Classify(24))
	assert.Equal(t, Good, Classify(25))
	assert.Equal(t, Inaccuracy, Classify(50))
	assert.Equal(t, Mistake, Classify(100))
	assert.Equal(t, Blunder, Classify(200))
	assert.Equal(t, Blunder, Classify(1000))
}

func TestAnalysisScoreToCPAndNegate(t *testing.T) {
	cp := AnalysisScore{Kind: Centipawns, Value: 42}
	assert.Equal(t, 42, cp.ToCP())
	assert.Equal(t, -42, cp.Negate().ToCP())

	mateIn2 := AnalysisScore{Kind: Mate, Value: 2}
	assert.Equal(t, 30000-200, mateIn2.ToCP())
	mateAgainst := mateIn2.Negate()
	assert.Equal(t, -2, mateAgainst.Value)
	assert.True(t, mateAgainst.Negate().Negate().HasMate())
}

func TestFingerprintVariesByConfig(t *testing.T) {
	a := Fingerprint("game-1", AnalysisConfig{ShallowDepth: 10, DeepDepth: 22, MaxCriticalPositions: 20})
	b := Fingerprint("game-1", AnalysisConfig{ShallowDepth: 12, DeepDepth: 22, MaxCriticalPositions: 20})
	c := Fingerprint("game-2", AnalysisConfig{ShallowDepth: 10, DeepDepth: 22, MaxCriticalPositions: 20})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, Fingerprint("game-1", AnalysisConfig{ShallowDepth: 10, DeepDepth: 22, MaxCriticalPositions: 20}))
}

// fakeEvaluator returns a deterministic score derived from the position's
// material balance and counts every call for dedup assertions.
type fakeEvaluator struct {
	calls atomic.Int64
	delay time.Duration
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, fenStr string, depth int) (EvalResult, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	pos, err := fen.Decode(fenStr)
	if err != nil {
		return EvalResult{}, err
	}
	score := materialBalance(pos) * 100
	if pos.Turn() == rules.Black {
		score = -score
	}
	return EvalResult{Score: AnalysisScore{Kind: Centipawns, Value: score}}, nil
}

func materialBalance(pos rules.Position) int {
	values := map[rules.Piece]int{rules.Pawn: 1, rules.Knight: 3, rules.Bishop: 3, rules.Rook: 5, rules.Queen: 9}
	total := 0
	for sq := rules.Square(0); sq < 64; sq++ {
		c, p, ok := pos.Square(sq)
		if !ok {
			continue
		}
		v := values[p]
		if c == rules.Black {
			v = -v
		}
		total += v
	}
	return total
}

func buildTwoPlyGame(t *testing.T) GameRecord {
	t.Helper()
	r := rules.NewDefault()
	ctx := context.Background()

	start, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	mv1, err := rules.ParseMove("e2e4")
	require.NoError(t, err)
	afterE4, applied1, err := r.Apply(ctx, start, mv1)
	require.NoError(t, err)

	mv2, err := rules.ParseMove("e7e5")
	require.NoError(t, err)
	afterE5, applied2, err := r.Apply(ctx, afterE4, mv2)
	require.NoError(t, err)

	return GameRecord{
		GameID: "game-two-ply",
		Plies: []GamePly{
			{Ply: 1, Mover: rules.White, FENBefore: fen.Encode(start), FENAfter: fen.Encode(afterE4), SAN: applied1.SAN, TimeSpentMs: 1500},
			{Ply: 2, Mover: rules.Black, FENBefore: fen.Encode(afterE4), FENAfter: fen.Encode(afterE5), SAN: applied2.SAN, TimeSpentMs: 2200},
		},
	}
}

func TestPipelineRunProducesPerPlyAndProfiles(t *testing.T) {
	game := buildTwoPlyGame(t)
	eval := &fakeEvaluator{}
	p := NewPipeline(eval, rules.NewDefault())

	result, err := p.Run(context.Background(), game, DefaultAnalysisConfig())
	require.NoError(t, err)
	require.Len(t, result.Positions, 2)

	assert.Equal(t, 1, result.Positions[0].Ply)
	assert.Equal(t, rules.White, result.Positions[0].Mover)
	assert.Equal(t, DefaultAnalysisConfig().ShallowDepth, result.Positions[0].Depth)
	assert.GreaterOrEqual(t, result.Positions[0].CpLoss, 0)

	assert.Equal(t, rules.White, result.Profiles[rules.White].Color)
	assert.Equal(t, rules.Black, result.Profiles[rules.Black].Color)
	assert.Equal(t, uint64(1), p.BuildCount())
}

func TestPipelineRunDedupsConcurrentCallsForSameFingerprint(t *testing.T) {
	game := buildTwoPlyGame(t)
	eval := &fakeEvaluator{delay: 50 * time.Millisecond}
	p := NewPipeline(eval, rules.NewDefault())

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := p.Run(context.Background(), game, DefaultAnalysisConfig())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(1), p.BuildCount(), "concurrent requests for the same fingerprint must collapse onto one build")
}

func TestDetectCriticalPositionsKeepsTopNByScoreThenPly(t *testing.T) {
	positions := []AdvancedPositionAnalysis{
		{Ply: 1, CpLoss: 10},
		{Ply: 2, CpLoss: 300},
		{Ply: 3, CpLoss: 300},
		{Ply: 4, CpLoss: 5},
	}
	p := &Pipeline{}
	p.detectCriticalPositions(positions, AnalysisConfig{MaxCriticalPositions: 2})

	var critical []int
	for _, pos := range positions {
		if pos.IsCritical {
			critical = append(critical, pos.Ply)
		}
	}
	assert.ElementsMatch(t, []int{2, 3}, critical, "the two highest-scoring plies should win, ties broken by ascending ply")
}
