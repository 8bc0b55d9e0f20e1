package services

import (
	"context"

	"go.uber.org/zap"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

// runSteps executes steps in order and stops at the first failure. Nothing is
// compensated: the returned *StepError lists what already happened so the
// caller can surface the partial state.
func runSteps(ctx context.Context, op string, steps []step) error {
	completed := make([]string, 0, len(steps))
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			zap.L().Warn("multi-step mutation stopped part-way",
				zap.String("component", "services"),
				zap.String("op", op),
				zap.String("failed", s.name),
				zap.Strings("completed", completed),
				zap.Error(err))
			return &StepError{Op: op, Completed: completed, Failed: s.name, Err: err}
		}
		completed = append(completed, s.name)
	}
	return nil
}
