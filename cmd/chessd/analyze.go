package main

import (
	"context"
	"fmt"

	"github.com/benediktms/chesstty/pkg/analysis"
	"github.com/benediktms/chesstty/pkg/engineproc"
	"github.com/benediktms/chesstty/pkg/persistence"
	"github.com/benediktms/chesstty/pkg/rules"
	"github.com/benediktms/chesstty/pkg/session"
	"github.com/seekerror/logw"
)

// runAnalysisPipeline spawns enginePath as an external UCI engine, runs the
// post-game review pipeline over history, and persists the resulting
// artifact under gameID in stores.Analyses. It is the common path behind
// both Registry.OnFinish's enqueue-on-finish hook and the "analyze"
// subcommand's on-demand re-run.
func runAnalysisPipeline(ctx context.Context, stores *Stores, enginePath, gameID string, history []session.MoveRecord) (analysis.AdvancedGameAnalysis, error) {
	adapter, events, err := engineproc.Spawn(ctx, enginePath)
	if err != nil {
		return analysis.AdvancedGameAnalysis{}, fmt.Errorf("chessd: spawn analysis engine: %w", err)
	}
	defer func() { _ = adapter.Quit(ctx) }()

	evaluator := analysis.NewEngineEvaluator(adapter, events)
	pipeline := analysis.NewPipeline(evaluator, rules.NewDefault())

	game := analysisGameRecord(gameID, history)
	result, err := pipeline.Run(ctx, game, analysis.DefaultAnalysisConfig())
	if err != nil {
		return analysis.AdvancedGameAnalysis{}, fmt.Errorf("chessd: run analysis pipeline: %w", err)
	}

	record := persistence.AdvancedGameAnalysisRecord{RecordID: "analysis_" + gameID, Analysis: result}
	if _, err := stores.Analyses.Save(record); err != nil {
		return result, fmt.Errorf("chessd: persist analysis %v: %w", record.RecordID, err)
	}
	return result, nil
}

// enqueueAnalysis runs the pipeline in the background and logs its outcome;
// used from Registry.OnFinish, where nothing is waiting on the result.
func enqueueAnalysis(ctx context.Context, stores *Stores, enginePath string, snap session.SessionSnapshot) {
	gameID := "game_" + snap.SessionID
	go func() {
		if _, err := runAnalysisPipeline(ctx, stores, enginePath, gameID, snap.History); err != nil {
			logw.Errorf(ctx, "chessd: analysis for %v failed: %v", gameID, err)
			return
		}
		logw.Infof(ctx, "chessd: analysis for %v complete", gameID)
	}()
}
