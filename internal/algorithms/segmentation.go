// Foreground extraction via GrabCut
package algorithms

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

const (
	// BackgroundMargin is the inset, in pixels, of the GrabCut seed rectangle.
	BackgroundMargin = 10
	// GrabCutIterations is the fixed number of GrabCut refinement passes.
	GrabCutIterations = 5
)

// GrabCut mask classes as written by OpenCV.
const (
	gcBackground byte = iota
	gcForeground
	gcProbableBackground
	gcProbableForeground
)

// SeedRect returns the GrabCut seed rectangle for a width x height frame and
// false when it would have no area.
func SeedRect(width, height int) (image.Rectangle, bool) {
	if width <= 2*BackgroundMargin || height <= 2*BackgroundMargin {
		return image.Rectangle{}, false
	}
	return image.Rect(BackgroundMargin, BackgroundMargin, width-BackgroundMargin, height-BackgroundMargin), true
}

// RemoveBackground segments src with GrabCut and returns a BGRA image whose
// alpha is 0 for definite or probable background and 255 elsewhere.
func RemoveBackground(src gocv.Mat) (gocv.Mat, error) {
	if err := validateInput(src); err != nil {
		return gocv.NewMat(), err
	}

	rect, ok := SeedRect(src.Cols(), src.Rows())
	if !ok {
		return gocv.NewMat(), fmt.Errorf("%w: %dx%d needs more than %d px per side",
			ErrImageTooSmall, src.Cols(), src.Rows(), 2*BackgroundMargin)
	}

	bgr, err := toBGR(src)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer bgr.Close()

	mask := gocv.NewMat()
	defer mask.Close()
	bgdModel := gocv.NewMat()
	defer bgdModel.Close()
	fgdModel := gocv.NewMat()
	defer fgdModel.Close()

	if err := gocv.GrabCut(bgr, &mask, rect, &bgdModel, &fgdModel, GrabCutIterations, gocv.GCInitWithRect); err != nil {
		return gocv.NewMat(), fmt.Errorf("grabcut failed: %w", err)
	}

	alpha, err := alphaFromMask(mask)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer alpha.Close()

	return attachAlpha(bgr, alpha)
}

func alphaFromMask(mask gocv.Mat) (gocv.Mat, error) {
	classes := mask.ToBytes()
	alphaData := make([]byte, len(classes))
	for i, class := range classes {
		switch class {
		case gcForeground, gcProbableForeground:
			alphaData[i] = 255
		}
	}

	// NewMatFromBytes may reference alphaData directly; clone before it goes out of scope.
	view, err := gocv.NewMatFromBytes(mask.Rows(), mask.Cols(), gocv.MatTypeCV8UC1, alphaData)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("build alpha plane: %w", err)
	}
	defer view.Close()
	return view.Clone(), nil
}
