package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
)

// gateOp blocks until its gate is closed, then flips the image vertically.
type gateOp struct {
	started chan struct{}
	gate    chan struct{}
}

func (g *gateOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	close(g.started)
	<-g.gate
	return algorithms.Flip(input, algorithms.FlipVertical)
}

func (g *gateOp) GetDefaultParams() map[string]interface{}     { return nil }
func (g *gateOp) GetName() string                              { return "gate" }
func (g *gateOp) GetDescription() string                       { return "test gate" }
func (g *gateOp) Validate(params map[string]interface{}) error { return nil }
func (g *gateOp) GetParameterInfo() []algorithms.ParameterInfo { return nil }

func registerGate(t *testing.T, name string) *gateOp {
	t.Helper()
	op := &gateOp{started: make(chan struct{}), gate: make(chan struct{})}
	algorithms.Register(name, op)
	return op
}

func submitAndWait(t *testing.T, r *Runner, step algorithms.Step) Result {
	t.Helper()
	results := make(chan Result, 1)
	require.NoError(t, r.Submit(context.Background(), step, func(res Result) { results <- res }))
	select {
	case res := <-results:
		return res
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not finish")
		return Result{}
	}
}

func TestRunnerCommitsResult(t *testing.T) {
	h, _ := newLoadedHistory(t, 30, 10)
	r := NewRunner(h, quietLogger())

	res := submitAndWait(t, r, algorithms.NewStep(algorithms.OpRotate, nil))
	require.NoError(t, res.Err)
	assert.True(t, res.Committed)
	assert.False(t, res.Stale)

	assert.Equal(t, 1, h.UndoDepth())
	assert.Equal(t, 10, h.Current().Cols())
	assert.Equal(t, 30, h.Current().Rows())
	assert.False(t, r.Busy())
}

func TestRunnerRejectsSecondJob(t *testing.T) {
	h, _ := newLoadedHistory(t, 30, 10)
	r := NewRunner(h, quietLogger())
	gate := registerGate(t, "gate_busy")

	done := make(chan Result, 1)
	require.NoError(t, r.Submit(context.Background(), algorithms.NewStep("gate_busy", nil), func(res Result) { done <- res }))
	<-gate.started

	assert.True(t, r.Busy())
	assert.ErrorIs(t, r.Submit(context.Background(), algorithms.NewStep(algorithms.OpGrayscale, nil), nil), ErrBusy)
	assert.ErrorIs(t, r.Run(context.Background(), algorithms.NewStep(algorithms.OpGrayscale, nil)).Err, ErrBusy)

	close(gate.gate)
	res := <-done
	assert.True(t, res.Committed)
	r.Wait()
}

func TestRunnerDiscardsStaleResult(t *testing.T) {
	h, _ := newLoadedHistory(t, 30, 10)
	r := NewRunner(h, quietLogger())
	gate := registerGate(t, "gate_stale")

	done := make(chan Result, 1)
	require.NoError(t, r.Submit(context.Background(), algorithms.NewStep("gate_stale", nil), func(res Result) { done <- res }))
	<-gate.started

	newer := testImage(t, 30, 10, 5)
	require.NoError(t, h.Commit(newer))

	close(gate.gate)
	res := <-done
	r.Wait()

	assert.True(t, res.Stale)
	assert.False(t, res.Committed)
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, h.UndoDepth())
	requireSameImage(t, newer, h.Current())
}

func TestRunnerCancelledContextDoesNotCommit(t *testing.T) {
	h, img := newLoadedHistory(t, 30, 10)
	r := NewRunner(h, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := r.Run(ctx, algorithms.NewStep(algorithms.OpGrayscale, nil))
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.False(t, res.Committed)
	requireSameImage(t, img, h.Current())
}

func TestRunnerReportsTransformErrors(t *testing.T) {
	h, _ := newLoadedHistory(t, 12, 12)
	r := NewRunner(h, quietLogger())

	res := r.Run(context.Background(), algorithms.NewStep(algorithms.OpRemoveBackground, nil))
	assert.ErrorIs(t, res.Err, algorithms.ErrImageTooSmall)
	assert.Equal(t, 0, h.UndoDepth())
}

func TestRunnerWithoutImage(t *testing.T) {
	h := NewHistory(nil, quietLogger())
	defer h.Close()
	r := NewRunner(h, quietLogger())

	assert.ErrorIs(t, r.Submit(context.Background(), algorithms.NewStep(algorithms.OpGrayscale, nil), nil), ErrNoImage)
}
