package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor is a test double for StageExecutor that returns preconfigured
// results.
type mockExecutor struct {
	err    error
	called []Stage
}

func (m *mockExecutor) Execute(_ context.Context, stage Stage) (*StageResult, error) {
	m.called = append(m.called, stage)
	if m.err != nil {
		return nil, m.err
	}
	return &StageResult{Stage: stage, Rows: int(stage) * 10}, nil
}

func newMockRouter(exec StageExecutor) *Router {
	r := NewRouter()
	for s := FirstStage; s <= LastStage; s++ {
		r.RegisterExecutor(s, exec)
	}
	return r
}

func TestRoute_GraphHasNoPrerequisites(t *testing.T) {
	exec := &mockExecutor{}
	router := newMockRouter(exec)

	result, err := router.Route(context.Background(), StageGraph)
	require.NoError(t, err)
	assert.Equal(t, StageGraph, result.Stage)
	assert.Equal(t, []Stage{StageGraph}, exec.called)
	assert.True(t, router.Completed(StageGraph))
}

func TestRoute_MissingRequiredPrerequisite(t *testing.T) {
	exec := &mockExecutor{}
	router := newMockRouter(exec)

	_, err := router.Route(context.Background(), StageCallers)
	require.ErrorIs(t, err, ErrPrerequisite)
	assert.Contains(t, err.Error(), "graph")
	assert.Empty(t, exec.called, "executor must not run without prerequisites")
	assert.False(t, router.Completed(StageCallers))
}

func TestRoute_ExportOptionalPrerequisites(t *testing.T) {
	exec := &mockExecutor{}
	router := newMockRouter(exec)
	ctx := context.Background()

	for _, s := range []Stage{StageGraph, StageCallers, StageCallData, StageAttributes} {
		_, err := router.Route(ctx, s)
		require.NoError(t, err)
	}
	// Reciprocate and missingness are skipped.
	_, err := router.Route(ctx, StageExport)
	require.NoError(t, err)
}

func TestRoute_ExportNeedsAttributes(t *testing.T) {
	router := newMockRouter(&mockExecutor{})
	ctx := context.Background()

	for _, s := range []Stage{StageGraph, StageCallers, StageCallData} {
		_, err := router.Route(ctx, s)
		require.NoError(t, err)
	}
	_, err := router.Route(ctx, StageExport)
	require.ErrorIs(t, err, ErrPrerequisite)
	assert.Contains(t, err.Error(), "attributes")
}

func TestRoute_NoExecutor(t *testing.T) {
	_, err := NewRouter().Route(context.Background(), StageGraph)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no executor registered")
}

func TestRoute_ExecutorErrorNotRecorded(t *testing.T) {
	boom := errors.New("boom")
	router := newMockRouter(&mockExecutor{err: boom})

	_, err := router.Route(context.Background(), StageGraph)
	require.ErrorIs(t, err, boom)
	assert.False(t, router.Completed(StageGraph))
}

func TestRouteRange_All(t *testing.T) {
	exec := &mockExecutor{}
	router := newMockRouter(exec)

	results, err := router.RouteRange(context.Background(), FirstStage, LastStage)
	require.NoError(t, err)
	require.Len(t, results, int(LastStage)+1)
	for i, r := range results {
		assert.Equal(t, Stage(i), r.Stage)
	}
	assert.Len(t, exec.called, int(LastStage)+1)
}

func TestRouteRange_StopsAtFailure(t *testing.T) {
	router := newMockRouter(&mockExecutor{})

	// Starting at call-data skips callers, which call-data requires.
	results, err := router.RouteRange(context.Background(), StageCallData, LastStage)
	require.ErrorIs(t, err, ErrPrerequisite)
	assert.Empty(t, results)
}

func TestRouteRange_InvalidRange(t *testing.T) {
	_, err := newMockRouter(&mockExecutor{}).RouteRange(context.Background(), StageExport, StageGraph)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid range")
}

func TestRouteRange_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &mockExecutor{}
	_, err := newMockRouter(exec).RouteRange(ctx, FirstStage, LastStage)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.called)
}
