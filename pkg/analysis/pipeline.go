package analysis

import (
	"context"
	"fmt"
	"sort"

	"github.com/benediktms/chesstty/pkg/analysis/boardanalysis"
	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/benediktms/chesstty/pkg/rules/fen"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/stat"
)

// pipelineVersion is part of the fingerprint that keys concurrent-build
// deduplication. The pipeline keeps no artifact cache: a completed result is
// not stored, and a later Run with the same fingerprint builds again.
const pipelineVersion = 1

// Pipeline runs the four-phase post-game review over a GameRecord. One
// Pipeline can be shared by every concurrent analysis request: Run is a
// pure function of its arguments, and the fingerprint cache (singleflight)
// collapses concurrent requests for the same game onto one build.
type Pipeline struct {
	evaluator Evaluator
	rules     rules.ChessRules

	group singleflight.Group
	built atomic.Uint64
}

func NewPipeline(evaluator Evaluator, r rules.ChessRules) *Pipeline {
	return &Pipeline{evaluator: evaluator, rules: r}
}

// Fingerprint returns the cache key for game analyzed under config: the
// five-tuple (game_id, pipeline_version, shallow_depth, deep_depth,
// max_critical_positions) spec.md names.
func Fingerprint(gameID string, cfg AnalysisConfig) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", gameID, pipelineVersion, cfg.ShallowDepth, cfg.DeepDepth, cfg.MaxCriticalPositions)
}

// Run executes the pipeline for game under cfg, deduplicating concurrent
// callers for the same fingerprint onto a single build via singleflight.
func (p *Pipeline) Run(ctx context.Context, game GameRecord, cfg AnalysisConfig) (AdvancedGameAnalysis, error) {
	fp := Fingerprint(game.GameID, cfg)

	v, err, _ := p.group.Do(fp, func() (interface{}, error) {
		result, err := p.run(ctx, game, cfg)
		if err == nil {
			p.built.Inc()
		}
		return result, err
	})
	if err != nil {
		return AdvancedGameAnalysis{}, err
	}
	return v.(AdvancedGameAnalysis), nil
}

// BuildCount returns how many times the pipeline has actually executed
// (as opposed to having its result served from an in-flight dedup), for
// tests asserting the at-most-one-concurrent-build guarantee.
func (p *Pipeline) BuildCount() uint64 {
	return p.built.Load()
}

func (p *Pipeline) run(ctx context.Context, game GameRecord, cfg AnalysisConfig) (AdvancedGameAnalysis, error) {
	positions, err := p.shallowPass(ctx, game, cfg)
	if err != nil {
		return AdvancedGameAnalysis{}, err
	}

	p.detectCriticalPositions(positions, cfg)

	if err := p.deepPass(ctx, game, positions, cfg); err != nil {
		return AdvancedGameAnalysis{}, err
	}

	var profiles [2]PsychologicalProfile
	profiles[rules.White] = buildProfile(rules.White, game, positions)
	profiles[rules.Black] = buildProfile(rules.Black, game, positions)

	return AdvancedGameAnalysis{
		GameID:    game.GameID,
		Config:    cfg,
		Positions: positions,
		Profiles:  profiles,
	}, nil
}

// Phase 1: per-ply shallow evaluation, cp_loss, classification, and the
// pure per-position metrics.
func (p *Pipeline) shallowPass(ctx context.Context, game GameRecord, cfg AnalysisConfig) ([]AdvancedPositionAnalysis, error) {
	out := make([]AdvancedPositionAnalysis, len(game.Plies))
	for i, ply := range game.Plies {
		before, err := p.evaluator.Evaluate(ctx, ply.FENBefore, cfg.ShallowDepth)
		if err != nil {
			return nil, fmt.Errorf("analysis: shallow eval ply %d (before): %w", ply.Ply, err)
		}
		after, err := p.evaluator.Evaluate(ctx, ply.FENAfter, cfg.ShallowDepth)
		if err != nil {
			return nil, fmt.Errorf("analysis: shallow eval ply %d (after): %w", ply.Ply, err)
		}

		moverAfter := after.Score.Negate()
		cpLoss := before.Score.ToCP() - moverAfter.ToCP()
		if cpLoss < 0 {
			cpLoss = 0
		}

		pos, err := fen.Decode(ply.FENAfter)
		if err != nil {
			return nil, fmt.Errorf("analysis: decode ply %d: %w", ply.Ply, err)
		}

		afterKS := [2]boardanalysis.PositionKingSafety{boardanalysis.EvaluateKingSafety(pos, rules.White), boardanalysis.EvaluateKingSafety(pos, rules.Black)}

		out[i] = AdvancedPositionAnalysis{
			Ply:            ply.Ply,
			Mover:          ply.Mover,
			EvalBefore:     before.Score,
			EvalAfter:      after.Score,
			CpLoss:         cpLoss,
			Classification: Classify(cpLoss),
			Depth:          cfg.ShallowDepth,
			TacticsAfter:   boardanalysis.DetectTactics(pos),
			KingSafety:     afterKS,
			Tension:        boardanalysis.EvaluateTension(pos),
		}

		beforePos, err := fen.Decode(ply.FENBefore)
		if err == nil {
			out[i].TacticsBefore = boardanalysis.DetectTactics(beforePos)
			beforeMoverKS := boardanalysis.EvaluateKingSafety(beforePos, ply.Mover)
			out[i].KingSafetyDelta = afterKS[ply.Mover].AttackersInRing - beforeMoverKS.AttackersInRing
		}
	}
	return out, nil
}

// Phase 2: weighted critical-position scoring, keeping the top
// max_critical_positions, ties broken by ascending ply.
func (p *Pipeline) detectCriticalPositions(positions []AdvancedPositionAnalysis, cfg AnalysisConfig) {
	for i := range positions {
		positions[i].CriticalScore = criticalScore(positions[i])
	}

	ranked := make([]int, len(positions))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		ia, ib := ranked[a], ranked[b]
		if positions[ia].CriticalScore != positions[ib].CriticalScore {
			return positions[ia].CriticalScore > positions[ib].CriticalScore
		}
		return positions[ia].Ply < positions[ib].Ply
	})

	limit := cfg.MaxCriticalPositions
	if limit > len(ranked) {
		limit = len(ranked)
	}
	for _, i := range ranked[:limit] {
		positions[i].IsCritical = true
	}
}

func criticalScore(pos AdvancedPositionAnalysis) float64 {
	cpLossNorm := minF(float64(pos.CpLoss)/200, 1) * 3.0

	swing := pos.EvalBefore.ToCP() - pos.EvalAfter.Negate().ToCP()
	if swing < 0 {
		swing = -swing
	}
	swingNorm := minF(float64(swing)/200, 1) * 2.0

	tacticalScore := 0.0
	if len(pos.TacticsAfter) > 0 {
		tacticalScore = 2.5
	}

	kingSafetyScore := 0.0
	if pos.KingSafetyDelta >= 2 {
		kingSafetyScore = 1.5
	}

	tensionScore := 0.0
	if pos.Tension.Score >= 2 {
		tensionScore = 1.0
	}

	mateScore := 0.0
	if pos.EvalBefore.HasMate() != pos.EvalAfter.HasMate() {
		mateScore = 3.0
	}

	return cpLossNorm + swingNorm + tacticalScore + kingSafetyScore + tensionScore + mateScore
}

// Phase 3: deep re-pass of only the critical positions, replacing their
// evals, cp_loss and classification with deep_depth results and recording
// deep_depth. Tactical tags are recomputed from the positions before and
// after the move, as in phase 1; the deep principal variation is not used
// for them.
func (p *Pipeline) deepPass(ctx context.Context, game GameRecord, positions []AdvancedPositionAnalysis, cfg AnalysisConfig) error {
	for i := range positions {
		if !positions[i].IsCritical {
			continue
		}
		ply := game.Plies[i]

		before, err := p.evaluator.Evaluate(ctx, ply.FENBefore, cfg.DeepDepth)
		if err != nil {
			return fmt.Errorf("analysis: deep eval ply %d (before): %w", ply.Ply, err)
		}
		after, err := p.evaluator.Evaluate(ctx, ply.FENAfter, cfg.DeepDepth)
		if err != nil {
			return fmt.Errorf("analysis: deep eval ply %d (after): %w", ply.Ply, err)
		}

		pos, err := fen.Decode(ply.FENAfter)
		if err != nil {
			return fmt.Errorf("analysis: decode ply %d: %w", ply.Ply, err)
		}
		beforePos, err := fen.Decode(ply.FENBefore)
		if err != nil {
			return fmt.Errorf("analysis: decode ply %d before: %w", ply.Ply, err)
		}

		positions[i].EvalBefore = before.Score
		positions[i].EvalAfter = after.Score
		positions[i].Depth = cfg.DeepDepth
		positions[i].TacticsBefore = boardanalysis.DetectTactics(beforePos)
		positions[i].TacticsAfter = boardanalysis.DetectTactics(pos)

		moverAfter := after.Score.Negate()
		cpLoss := before.Score.ToCP() - moverAfter.ToCP()
		if cpLoss < 0 {
			cpLoss = 0
		}
		positions[i].CpLoss = cpLoss
		positions[i].Classification = Classify(cpLoss)
	}
	return nil
}

// Phase 4: per-color psychological profile.
func buildProfile(c rules.Color, game GameRecord, positions []AdvancedPositionAnalysis) PsychologicalProfile {
	profile := PsychologicalProfile{Color: c}

	var ownIdx []int
	for i, pos := range positions {
		if pos.Mover == c {
			ownIdx = append(ownIdx, i)
		}
	}
	if len(ownIdx) == 0 {
		return profile
	}

	// max_consecutive_errors
	runStart, run, bestRun, bestStart := -1, 0, 0, 0
	for _, i := range ownIdx {
		if positions[i].Classification >= Inaccuracy {
			if run == 0 {
				runStart = positions[i].Ply
			}
			run++
			if run > bestRun {
				bestRun = run
				bestStart = runStart
			}
		} else {
			run = 0
		}
	}
	profile.MaxConsecutiveErrors = bestRun
	profile.MaxConsecutiveErrorsStart = bestStart

	// favorable/unfavorable swings and momentum streak
	favorable, unfavorable, momentum, bestMomentum := 0, 0, 0, 0
	var prevEval *int
	for _, i := range ownIdx {
		cur := positions[i].EvalAfter.Negate().ToCP()
		if prevEval != nil {
			delta := cur - *prevEval
			if delta > 100 {
				favorable++
				momentum++
				if momentum > bestMomentum {
					bestMomentum = momentum
				}
			} else if delta < -100 {
				unfavorable++
				momentum = 0
			} else {
				momentum = 0
			}
		}
		v := cur
		prevEval = &v
	}
	profile.FavorableSwings = favorable
	profile.UnfavorableSwings = unfavorable
	profile.MaxMomentumStreak = bestMomentum

	// blunder cluster density: max blunders in any sliding window of 5 of
	// this color's moves
	bestDensity, bestFrom, bestTo := 0, 0, 0
	for w := 0; w < len(ownIdx); w++ {
		end := w + 5
		if end > len(ownIdx) {
			end = len(ownIdx)
		}
		count := 0
		for _, i := range ownIdx[w:end] {
			if positions[i].Classification == Blunder {
				count++
			}
		}
		if count > bestDensity {
			bestDensity = count
			bestFrom = positions[ownIdx[w]].Ply
			bestTo = positions[ownIdx[end-1]].Ply
		}
		if end == len(ownIdx) {
			break
		}
	}
	profile.BlunderClusterDensity = bestDensity
	profile.BlunderClusterFromPly = bestFrom
	profile.BlunderClusterToPly = bestTo

	// time/quality correlation, blunder/good-move average times
	var times, losses []float64
	var blunderTimes, goodTimes []float64
	for _, i := range ownIdx {
		ply := game.Plies[i]
		times = append(times, float64(ply.TimeSpentMs))
		losses = append(losses, float64(positions[i].CpLoss))
		if positions[i].Classification == Blunder {
			blunderTimes = append(blunderTimes, float64(ply.TimeSpentMs))
		}
		if positions[i].Classification <= Excellent {
			goodTimes = append(goodTimes, float64(ply.TimeSpentMs))
		}
	}
	if len(times) >= 3 && variance(times) > 0 && variance(losses) > 0 {
		r := stat.Correlation(times, losses, nil)
		profile.TimeQualityCorrelation = lang.Some(r)
	}
	if len(blunderTimes) > 0 {
		profile.AvgBlunderTimeMs = lang.Some(mean(blunderTimes))
	}
	if len(goodTimes) > 0 {
		profile.AvgGoodMoveTimeMs = lang.Some(mean(goodTimes))
	}

	// opening/middlegame/endgame average cp_loss
	profile.OpeningAvgCpLoss = avgCpLossInRange(ownIdx, positions, 1, 30)
	profile.MiddlegameAvgCpLoss = avgCpLossInRange(ownIdx, positions, 31, 70)
	profile.EndgameAvgCpLoss = avgCpLossInRange(ownIdx, positions, 71, 1<<30)

	return profile
}

func avgCpLossInRange(ownIdx []int, positions []AdvancedPositionAnalysis, lo, hi int) lang.Optional[float64] {
	var vals []float64
	for _, i := range ownIdx {
		if positions[i].Ply >= lo && positions[i].Ply <= hi {
			vals = append(vals, float64(positions[i].CpLoss))
		}
	}
	if len(vals) == 0 {
		return lang.Optional[float64]{}
	}
	return lang.Some(mean(vals))
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func variance(vals []float64) float64 {
	m := mean(vals)
	var sumSq float64
	for _, v := range vals {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(vals))
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
