// Live preview of continuous adjustments that never touches history
package core

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
)

// PreviewState is the state of a Preview controller.
type PreviewState int

const (
	PreviewIdle PreviewState = iota
	PreviewActive
)

func (s PreviewState) String() string {
	if s == PreviewActive {
		return "previewing"
	}
	return "idle"
}

// Preview derives transient display images from a frozen reference copy of
// the history's current image. The reference is captured on the first
// Update of an interaction and recaptured whenever the history epoch moves,
// so a commit, undo, redo or load ends the preview implicitly.
//
// Adjustments are not composed: each Update computes its step from the same
// reference, so a scale preview after a brightness preview starts again from
// the reference and the brightness preview is dropped.
type Preview struct {
	mu      sync.Mutex
	history *History
	logger  logrus.FieldLogger

	active    bool
	epoch     uint64
	reference gocv.Mat
	display   gocv.Mat
	step      algorithms.Step
}

func NewPreview(history *History, logger logrus.FieldLogger) *Preview {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Preview{
		history:   history,
		logger:    logger,
		reference: gocv.NewMat(),
		display:   gocv.NewMat(),
	}
}

// State reports PreviewActive only while the captured reference still
// matches the history's current image.
func (p *Preview) State() PreviewState {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active && p.epoch == p.history.Epoch() {
		return PreviewActive
	}
	return PreviewIdle
}

// Update recomputes the display image for step. The returned Mat is owned by
// the controller and stays valid until the next Update, Commit, Discard or
// Close.
func (p *Preview) Update(step algorithms.Step) (gocv.Mat, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active || p.epoch != p.history.Epoch() {
		if err := p.captureLocked(); err != nil {
			return gocv.NewMat(), err
		}
	}

	result, err := step.Apply(p.reference)
	if err != nil {
		return gocv.NewMat(), err
	}

	p.display.Close()
	p.display = result
	p.step = step

	return p.display, nil
}

func (p *Preview) captureLocked() error {
	reference, epoch, err := p.history.Snapshot()
	if err != nil {
		return err
	}

	p.releaseLocked()
	p.reference = reference
	p.epoch = epoch
	p.active = true

	p.logger.WithFields(logrus.Fields{
		"epoch":  epoch,
		"width":  reference.Cols(),
		"height": reference.Rows(),
	}).Debug("PREVIEW: Reference captured")
	return nil
}

// Step returns the step behind the current display image.
func (p *Preview) Step() (algorithms.Step, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.step, p.active && !p.display.Empty()
}

// Commit pushes the current display image into the history. It fails with
// ErrNoPreview when nothing is being previewed and with ErrStaleResult when
// the history moved since the reference was captured. The preview returns to
// idle either way.
func (p *Preview) Commit() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.active || p.display.Empty() {
		return ErrNoPreview
	}

	err := p.history.CommitAt(p.epoch, p.display)
	if err == nil {
		p.logger.WithField("step", p.step.String()).Info("PREVIEW: Applied")
	}
	p.releaseLocked()
	return err
}

// Discard drops the preview without touching history.
func (p *Preview) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.active {
		p.logger.Debug("PREVIEW: Discarded")
	}
	p.releaseLocked()
}

// Close releases the reference and display buffers.
func (p *Preview) Close() {
	p.Discard()
}

func (p *Preview) releaseLocked() {
	p.reference.Close()
	p.display.Close()
	p.reference = gocv.NewMat()
	p.display = gocv.NewMat()
	p.active = false
	p.step = algorithms.Step{}
}
