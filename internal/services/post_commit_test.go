package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPostCommitRunner_RunsEveryTask(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	runner := NewPostCommitRunner(zap.New(core))

	var ran []string
	task := func(name string, err error) PostCommitTask {
		return PostCommitTask{Name: name, Run: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	errs := runner.Run(context.Background(),
		task("delete-file", errors.New("gone")),
		task("index", nil),
		PostCommitTask{Name: "noop"},
	)

	assert.Equal(t, []string{"delete-file", "index"}, ran)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "delete-file")

	entries := logs.FilterMessage("post-commit task failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "delete-file", entries[0].ContextMap()["task"])
}

func TestPostCommitRunner_IgnoresCallerCancellation(t *testing.T) {
	runner := NewPostCommitRunner(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var seen error
	errs := runner.Run(ctx, PostCommitTask{Name: "check", Run: func(ctx context.Context) error {
		seen = ctx.Err()
		return nil
	}})

	assert.Empty(t, errs)
	assert.NoError(t, seen)
}

func TestPostCommitRunner_RecoversPanics(t *testing.T) {
	runner := NewPostCommitRunner(zap.NewNop())

	errs := runner.Run(context.Background(), PostCommitTask{Name: "boom", Run: func(context.Context) error {
		panic("index client nil")
	}})

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "panic")
}
