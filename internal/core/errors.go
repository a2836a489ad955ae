package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImage is returned by operations that need a loaded image.
	ErrNoImage = errors.New("no image loaded")

	// ErrNoTargetPath is the cause of a SaveError when neither an explicit
	// path nor a source path is available.
	ErrNoTargetPath = errors.New("no file path specified")

	// ErrStaleResult is returned when a result computed against an older
	// epoch is offered for commit after the session moved on.
	ErrStaleResult = errors.New("result superseded by a newer edit")

	// ErrBusy is returned when a transform is already in flight.
	ErrBusy = errors.New("a transform is already running")

	// ErrNoPreview is returned when committing without an active preview.
	ErrNoPreview = errors.New("no preview in progress")
)

// LoadError reports an image that could not be decoded or was empty.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load image: %v", e.Err)
	}
	return fmt.Sprintf("load image %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError reports a failed save, either for lack of a target path or
// because encoding failed.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("save image: %v", e.Err)
	}
	return fmt.Sprintf("save image %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// IsNoTargetPath reports whether err is a save that failed for lack of a path.
func IsNoTargetPath(err error) bool {
	return errors.Is(err, ErrNoTargetPath)
}
