package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// PostCommitTask is a side effect that runs only after its data change has
// been committed. A failing task never undoes the commit.
type PostCommitTask struct {
	Name string
	Run  func(ctx context.Context) error
}

type PostCommitRunner interface {
	Run(ctx context.Context, tasks ...PostCommitTask) []error
}

type postCommitRunner struct {
	log *zap.Logger
}

func NewPostCommitRunner(log *zap.Logger) PostCommitRunner {
	return &postCommitRunner{log: log.Named("post_commit")}
}

// Run executes every task in order and returns the errors of those that failed.
// Tasks keep running after the caller's context is cancelled.
func (r *postCommitRunner) Run(ctx context.Context, tasks ...PostCommitTask) []error {
	ctx = context.WithoutCancel(ctx)

	var errs []error
	for _, task := range tasks {
		if task.Run == nil {
			continue
		}
		if err := r.run(ctx, task); err != nil {
			r.log.Warn("post-commit task failed", zap.String("task", task.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", task.Name, err))
			continue
		}
		r.log.Debug("post-commit task done", zap.String("task", task.Name))
	}
	return errs
}

func (r *postCommitRunner) run(ctx context.Context, task PostCommitTask) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return task.Run(ctx)
}
