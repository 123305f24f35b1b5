package analysis

import "context"

// Evaluator is the pipeline's only collaborator beyond the rules oracle: it
// drives an engine (or any stand-in, for tests) to a fixed search depth and
// returns the resulting score plus principal variation, synchronously.
// pkg/engineproc's Adapter is asynchronous and event-driven by design (the
// session actor needs that); the pipeline instead wants a blocking call per
// position, so a thin synchronous wrapper over an Adapter implements this
// interface rather than the pipeline depending on engineproc directly.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, depth int) (EvalResult, error)
}

// EvalResult is the synchronous evaluation an Evaluator returns: a score and
// the principal variation that produced it, both from the position's side
// to move.
type EvalResult struct {
	Score AnalysisScore
	PV    []string
}
