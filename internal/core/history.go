// Edit history: the authoritative current image plus linear undo/redo stacks
package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Store is the encoding collaborator used by Save.
type Store interface {
	SaveImage(mat gocv.Mat, path string) error
}

// ImageInfo describes the current image for status display.
type ImageInfo struct {
	Width     int
	Height    int
	Channels  int
	Path      string
	UndoDepth int
	RedoDepth int
}

// History owns one editing session. Every Mat it holds sits in exactly one
// slot (current, original, an undo entry or a redo entry) and is closed when
// it leaves the session, so archived states can never be mutated through an
// alias.
type History struct {
	mu     sync.RWMutex
	store  Store
	logger logrus.FieldLogger

	session    string
	current    gocv.Mat
	original   gocv.Mat
	undo       []gocv.Mat
	redo       []gocv.Mat
	sourcePath string
	hasImage   bool

	// epoch advances on every load, commit, undo or redo that changes current.
	epoch uint64
}

// NewHistory creates an empty history. store may be nil if Save is never used.
func NewHistory(store Store, logger logrus.FieldLogger) *History {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &History{
		store:    store,
		logger:   logger,
		current:  gocv.NewMat(),
		original: gocv.NewMat(),
	}
}

// Load starts a new session from mat. The input is cloned; the caller keeps
// ownership of mat. On failure the existing session is left untouched.
func (h *History) Load(mat gocv.Mat, path string) error {
	if mat.Empty() {
		return &LoadError{Path: path, Err: errors.New("image is empty or could not be decoded")}
	}
	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return &LoadError{Path: path, Err: fmt.Errorf("invalid image dimensions: %dx%d", mat.Cols(), mat.Rows())}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.releaseLocked()

	h.session = uuid.NewString()
	h.original = mat.Clone()
	h.current = mat.Clone()
	h.sourcePath = path
	h.hasImage = true
	h.epoch++

	h.logger.WithFields(logrus.Fields{
		"session":  h.session,
		"path":     path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("HISTORY: Image loaded")

	return nil
}

// Commit makes a copy of mat the new current image. The previous current is
// archived on the undo stack and the redo stack is cleared.
func (h *History) Commit(mat gocv.Mat) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.commitLocked(mat)
}

// CommitAt commits mat only if the history is still at epoch, so results
// computed from an older state are rejected with ErrStaleResult.
func (h *History) CommitAt(epoch uint64, mat gocv.Mat) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if epoch != h.epoch {
		h.logger.WithFields(logrus.Fields{
			"session":      h.session,
			"result_epoch": epoch,
			"epoch":        h.epoch,
		}).Debug("HISTORY: Rejected stale result")
		return ErrStaleResult
	}
	return h.commitLocked(mat)
}

func (h *History) commitLocked(mat gocv.Mat) error {
	if !h.hasImage {
		return ErrNoImage
	}
	if mat.Empty() {
		return errors.New("cannot commit empty image")
	}

	h.undo = append(h.undo, h.current)
	h.current = mat.Clone()
	h.clearRedoLocked()
	h.epoch++

	h.logger.WithFields(logrus.Fields{
		"session":    h.session,
		"width":      h.current.Cols(),
		"height":     h.current.Rows(),
		"channels":   h.current.Channels(),
		"undo_depth": len(h.undo),
	}).Debug("HISTORY: Committed")

	return nil
}

// Undo restores the previous image. It reports whether anything changed;
// with an empty undo stack it is a no-op.
func (h *History) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.undo)
	if n == 0 {
		return false
	}

	h.redo = append(h.redo, h.current)
	h.current = h.undo[n-1]
	h.undo[n-1] = gocv.Mat{}
	h.undo = h.undo[:n-1]
	h.epoch++

	h.logger.WithFields(logrus.Fields{
		"session":    h.session,
		"undo_depth": len(h.undo),
		"redo_depth": len(h.redo),
	}).Debug("HISTORY: Undo")

	return true
}

// Redo reapplies the most recently undone image. It reports whether anything
// changed; with an empty redo stack it is a no-op.
func (h *History) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := len(h.redo)
	if n == 0 {
		return false
	}

	h.undo = append(h.undo, h.current)
	h.current = h.redo[n-1]
	h.redo[n-1] = gocv.Mat{}
	h.redo = h.redo[:n-1]
	h.epoch++

	h.logger.WithFields(logrus.Fields{
		"session":    h.session,
		"undo_depth": len(h.undo),
		"redo_depth": len(h.redo),
	}).Debug("HISTORY: Redo")

	return true
}

// Current returns the live current image. Callers must treat it as read-only
// and must not retain it across a Load, Commit, Undo or Redo.
func (h *History) Current() gocv.Mat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Snapshot returns a deep copy of the current image together with the epoch
// it was taken at. The caller owns the copy.
func (h *History) Snapshot() (gocv.Mat, uint64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.hasImage {
		return gocv.NewMat(), h.epoch, ErrNoImage
	}
	return h.current.Clone(), h.epoch, nil
}

// Original returns a copy of the image as it was loaded.
func (h *History) Original() gocv.Mat {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.original.Clone()
}

// View runs fn with the current and original images under the read lock.
// fn must not retain either Mat.
func (h *History) View(fn func(current, original gocv.Mat)) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.hasImage {
		return ErrNoImage
	}
	fn(h.current, h.original)
	return nil
}

// Save encodes the current image to path, or to the source path when path
// is empty. The source path is updated only after a successful save.
func (h *History) Save(path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.hasImage {
		return &SaveError{Path: path, Err: ErrNoImage}
	}

	target := path
	if target == "" {
		target = h.sourcePath
	}
	if target == "" {
		return &SaveError{Err: ErrNoTargetPath}
	}
	if h.store == nil {
		return &SaveError{Path: target, Err: errors.New("no image store configured")}
	}

	if err := h.store.SaveImage(h.current, target); err != nil {
		var saveErr *SaveError
		if errors.As(err, &saveErr) {
			return err
		}
		return &SaveError{Path: target, Err: err}
	}

	h.sourcePath = target
	h.logger.WithFields(logrus.Fields{
		"session": h.session,
		"path":    target,
	}).Info("HISTORY: Image saved")

	return nil
}

// HasImage returns true once an image has been loaded
func (h *History) HasImage() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.hasImage
}

func (h *History) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.redo) > 0
}

func (h *History) UndoDepth() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.undo)
}

func (h *History) RedoDepth() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.redo)
}

// SourcePath returns the path associated with the current image, or "".
func (h *History) SourcePath() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sourcePath
}

// Epoch returns the current state counter.
func (h *History) Epoch() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.epoch
}

// Session returns the id of the current session, or "" before any load.
func (h *History) Session() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

// Info returns dimensions and bookkeeping for the current image.
func (h *History) Info() (ImageInfo, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.hasImage {
		return ImageInfo{}, ErrNoImage
	}
	return ImageInfo{
		Width:     h.current.Cols(),
		Height:    h.current.Rows(),
		Channels:  h.current.Channels(),
		Path:      h.sourcePath,
		UndoDepth: len(h.undo),
		RedoDepth: len(h.redo),
	}, nil
}

// StatusText formats a status line for an image of the given size.
func StatusText(path string, width, height int) string {
	name := "Unsaved image"
	if path != "" {
		name = filepath.Base(path)
	}
	return fmt.Sprintf("%s - %dx%dpx", name, width, height)
}

// Close releases every image held by the history.
func (h *History) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.releaseLocked()
	h.current = gocv.NewMat()
	h.original = gocv.NewMat()
	h.hasImage = false
	h.sourcePath = ""
	h.session = ""
	h.epoch++
}

func (h *History) releaseLocked() {
	h.current.Close()
	h.original.Close()
	for i := range h.undo {
		h.undo[i].Close()
	}
	h.undo = nil
	h.clearRedoLocked()
}

func (h *History) clearRedoLocked() {
	for i := range h.redo {
		h.redo[i].Close()
	}
	h.redo = nil
}
