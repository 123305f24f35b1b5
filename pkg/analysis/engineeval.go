package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/benediktms/chesstty/pkg/engineproc"
)

// EngineEvaluator adapts one engineproc.Adapter into the pipeline's
// synchronous Evaluator interface. It serializes calls: the underlying
// adapter is a single engine subprocess and can only run one search at a
// time.
type EngineEvaluator struct {
	adapter *engineproc.Adapter
	events  <-chan engineproc.Event
	mu      sync.Mutex
}

func NewEngineEvaluator(adapter *engineproc.Adapter, events <-chan engineproc.Event) *EngineEvaluator {
	return &EngineEvaluator{adapter: adapter, events: events}
}

func (e *EngineEvaluator) Evaluate(ctx context.Context, fen string, depth int) (EvalResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.adapter.SetPosition(ctx, fen, nil); err != nil {
		return EvalResult{}, fmt.Errorf("analysis: set position: %w", err)
	}
	if err := e.adapter.Go(ctx, engineproc.GoParams{Depth: depth}); err != nil {
		return EvalResult{}, fmt.Errorf("analysis: go depth %d: %w", depth, err)
	}

	var last EvalResult
	for {
		select {
		case ev, ok := <-e.events:
			if !ok {
				return EvalResult{}, fmt.Errorf("analysis: engine event stream closed mid-search")
			}
			switch ev.Kind {
			case engineproc.EventInfo:
				if ev.Info.Depth >= depth {
					last = EvalResult{
						Score: AnalysisScore{Kind: ScoreKind(ev.Info.Score.Kind), Value: ev.Info.Score.Value},
						PV:    append([]string{}, ev.Info.PV...),
					}
				}
			case engineproc.EventBestMove:
				return last, nil
			case engineproc.EventError:
				return EvalResult{}, ev.Err
			}
		case <-ctx.Done():
			return EvalResult{}, ctx.Err()
		}
	}
}
