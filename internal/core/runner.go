// Background execution of committed transforms with stale-result rejection
package core

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
)

// Result describes the outcome of a submitted step.
type Result struct {
	Step      algorithms.Step
	Committed bool
	// Stale is set when the history moved on before the result was ready;
	// the result was discarded.
	Stale    bool
	Err      error
	Duration time.Duration
}

// Runner moves transform work off the caller's goroutine. At most one job
// runs at a time, its input is a snapshot of the current image and its
// output is committed with History.CommitAt, so a result that arrives after
// a newer load, commit, undo or redo is discarded.
type Runner struct {
	history *History
	logger  logrus.FieldLogger

	mu   sync.Mutex
	busy bool
	wg   sync.WaitGroup
}

func NewRunner(history *History, logger logrus.FieldLogger) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{history: history, logger: logger}
}

// Busy reports whether a job is in flight.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy
}

// Submit starts step in the background and calls done from the worker
// goroutine when it finishes. It returns ErrBusy if a job is already
// running and ErrNoImage if nothing is loaded.
func (r *Runner) Submit(ctx context.Context, step algorithms.Step, done func(Result)) error {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return ErrBusy
	}

	input, epoch, err := r.history.Snapshot()
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.busy = true
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer input.Close()

		result := r.run(ctx, step, input, epoch)

		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()

		if done != nil {
			done(result)
		}
	}()

	return nil
}

// Run executes step synchronously with the same snapshot and commit rules
// as Submit.
func (r *Runner) Run(ctx context.Context, step algorithms.Step) Result {
	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return Result{Step: step, Err: ErrBusy}
	}
	input, epoch, err := r.history.Snapshot()
	if err != nil {
		r.mu.Unlock()
		return Result{Step: step, Err: err}
	}
	r.busy = true
	r.mu.Unlock()

	defer func() {
		input.Close()
		r.mu.Lock()
		r.busy = false
		r.mu.Unlock()
	}()

	return r.run(ctx, step, input, epoch)
}

func (r *Runner) run(ctx context.Context, step algorithms.Step, input gocv.Mat, epoch uint64) Result {
	start := time.Now()
	result := Result{Step: step}
	logger := r.logger.WithFields(logrus.Fields{
		"step":  step.String(),
		"epoch": epoch,
	})

	output, err := step.Apply(input)
	result.Duration = time.Since(start)
	if err != nil {
		logger.WithError(err).Error("RUNNER: Transform failed")
		result.Err = err
		return result
	}
	defer output.Close()

	if err := ctx.Err(); err != nil {
		logger.Debug("RUNNER: Cancelled before commit")
		result.Err = err
		return result
	}

	switch err := r.history.CommitAt(epoch, output); err {
	case nil:
		result.Committed = true
		logger.WithField("duration", result.Duration).Info("RUNNER: Committed")
	case ErrStaleResult:
		result.Stale = true
		logger.Info("RUNNER: Discarded stale result")
	default:
		result.Err = err
		logger.WithError(err).Error("RUNNER: Commit failed")
	}
	return result
}

// Wait blocks until the in-flight job, if any, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}
