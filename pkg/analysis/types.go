// Package analysis implements the post-game review pipeline: engine-driven
// per-move classification, critical-position detection, a deep re-pass, and
// a psychological profile per color. See pkg/analysis/boardanalysis for the
// pure per-position metrics it consumes.
package analysis

import (
	"github.com/benediktms/chesstty/pkg/analysis/boardanalysis"
	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/seekerror/stdlib/pkg/lang"
)

// AnalysisConfig parameterizes one pipeline run. It is part of a run's cache
// fingerprint, so changing it never returns a stale cached artifact.
type AnalysisConfig struct {
	ShallowDepth         int
	DeepDepth            int
	MaxCriticalPositions int
	ComputeAdvanced      bool
}

// DefaultAnalysisConfig matches the pipeline's reference parameters.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{ShallowDepth: 10, DeepDepth: 22, MaxCriticalPositions: 20, ComputeAdvanced: true}
}

// Classification buckets a move's centipawn loss.
type Classification uint8

const (
	Best Classification = iota
	Excellent
	Good
	Inaccuracy
	Mistake
	Blunder
)

func (c Classification) String() string {
	switch c {
	case Best:
		return "best"
	case Excellent:
		return "excellent"
	case Good:
		return "good"
	case Inaccuracy:
		return "inaccuracy"
	case Mistake:
		return "mistake"
	default:
		return "blunder"
	}
}

// Classify buckets a non-negative centipawn loss per the pipeline's fixed
// thresholds.
func Classify(cpLoss int) Classification {
	switch {
	case cpLoss < 10:
		return Best
	case cpLoss < 25:
		return Excellent
	case cpLoss < 50:
		return Good
	case cpLoss < 100:
		return Inaccuracy
	case cpLoss < 200:
		return Mistake
	default:
		return Blunder
	}
}

// GamePly is one half-move of pipeline input: the position before the move,
// the move played, the resulting SAN/FEN, and the wall-clock time the mover
// spent choosing it.
type GamePly struct {
	Ply         int // 1-indexed, White's first move is ply 1
	Mover       rules.Color
	FENBefore   string
	FENAfter    string
	SAN         string
	TimeSpentMs int64
}

// GameRecord is the pipeline's input: a finished game as a sequence of
// plies, identified for caching purposes.
type GameRecord struct {
	GameID string
	Plies  []GamePly
}

// AdvancedPositionAnalysis is the per-ply output of phases 1-3.
type AdvancedPositionAnalysis struct {
	Ply            int
	Mover          rules.Color
	EvalBefore     AnalysisScore
	EvalAfter      AnalysisScore
	CpLoss         int
	Classification Classification
	IsCritical     bool
	CriticalScore  float64
	Depth          int // shallow_depth, or deep_depth if IsCritical

	TacticsBefore []boardanalysis.TacticalTag
	TacticsAfter  []boardanalysis.TacticalTag
	KingSafety    [2]boardanalysis.PositionKingSafety // indexed by rules.Color, for the position after the move
	// KingSafetyDelta is attackers-in-ring(after) minus attackers-in-ring(before), for the mover's own king.
	KingSafetyDelta int
	Tension         boardanalysis.PositionTensionMetrics
}

// ScoreKind mirrors session.ScoreKind without importing pkg/session, keeping
// the analysis pipeline independent of the runtime it feeds.
type ScoreKind uint8

const (
	Centipawns ScoreKind = iota
	Mate
)

// AnalysisScore is a centipawn-or-mate evaluation, always from the side to
// move's perspective in the position it was computed for.
type AnalysisScore struct {
	Kind  ScoreKind
	Value int
}

// ToCP projects the score onto a single comparable centipawn axis, the same
// way session.AnalysisScore.ToCP does.
func (s AnalysisScore) ToCP() int {
	if s.Kind == Centipawns {
		return s.Value
	}
	if s.Value >= 0 {
		return 30000 - 100*s.Value
	}
	return -30000 - 100*s.Value
}

// Negate flips the score to the opponent's perspective; an involution.
func (s AnalysisScore) Negate() AnalysisScore {
	return AnalysisScore{Kind: s.Kind, Value: -s.Value}
}

// HasMate reports whether the evaluation is a forced mate.
func (s AnalysisScore) HasMate() bool { return s.Kind == Mate }

// PsychologicalProfile aggregates one color's decision quality across a
// finished game.
type PsychologicalProfile struct {
	Color rules.Color

	MaxConsecutiveErrors      int
	MaxConsecutiveErrorsStart int

	FavorableSwings   int
	UnfavorableSwings int
	MaxMomentumStreak int

	BlunderClusterDensity  int
	BlunderClusterFromPly  int
	BlunderClusterToPly    int

	TimeQualityCorrelation lang.Optional[float64]
	AvgBlunderTimeMs       lang.Optional[float64]
	AvgGoodMoveTimeMs      lang.Optional[float64]

	OpeningAvgCpLoss    lang.Optional[float64]
	MiddlegameAvgCpLoss lang.Optional[float64]
	EndgameAvgCpLoss    lang.Optional[float64]
}

// AdvancedGameAnalysis is the pipeline's full output artifact for one game.
type AdvancedGameAnalysis struct {
	GameID    string
	Config    AnalysisConfig
	Positions []AdvancedPositionAnalysis
	Profiles  [2]PsychologicalProfile // indexed by rules.Color
}
