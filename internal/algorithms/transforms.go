// Transform library: pure Mat -> Mat operations used by the editor
package algorithms

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// FlipAxis selects the mirror axis for Flip.
type FlipAxis string

const (
	FlipHorizontal FlipAxis = "horizontal"
	FlipVertical   FlipAxis = "vertical"
)

// Every transform below takes ownership of nothing: src is only read, and the
// returned Mat is a new allocation the caller must Close.

// Grayscale converts src to luminance and re-expands it to the source
// channel count so later operations stay channel compatible.
func Grayscale(src gocv.Mat) (gocv.Mat, error) {
	if err := validateInput(src); err != nil {
		return gocv.NewMat(), err
	}
	if src.Channels() == 1 {
		return src.Clone(), nil
	}

	return mapColor(src, func(color gocv.Mat) (gocv.Mat, error) {
		gray, err := toGray(color)
		if err != nil {
			return gocv.NewMat(), err
		}
		defer gray.Close()
		return expandGray(gray, color.Channels())
	})
}

// BlurKernelSize maps a blur intensity to its odd Gaussian kernel size.
func BlurKernelSize(intensity int) int {
	return 2*intensity + 1
}

// Blur applies a Gaussian blur with a (2*intensity+1) square kernel.
// Intensity 0 yields a 1x1 kernel.
func Blur(src gocv.Mat, intensity int) (gocv.Mat, error) {
	if err := validateInput(src); err != nil {
		return gocv.NewMat(), err
	}
	if intensity < 0 {
		return gocv.NewMat(), invalidParam("blur", "intensity", intensity, "must be non-negative")
	}

	kernelSize := BlurKernelSize(intensity)
	output := gocv.NewMat()
	if err := gocv.GaussianBlur(src, &output, image.Pt(kernelSize, kernelSize), 0, 0, gocv.BorderDefault); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("gaussian blur failed: %w", err)
	}
	return output, nil
}

// EdgeDetect runs Canny on the luminance of src and re-expands the edge map
// to the source channel count. A low threshold above the high one is passed
// through as given; OpenCV's Canny swaps the pair internally.
func EdgeDetect(src gocv.Mat, low, high float64) (gocv.Mat, error) {
	if err := validateInput(src); err != nil {
		return gocv.NewMat(), err
	}

	return mapColor(src, func(color gocv.Mat) (gocv.Mat, error) {
		gray, err := toGray(color)
		if err != nil {
			return gocv.NewMat(), err
		}
		defer gray.Close()

		edges := gocv.NewMat()
		defer edges.Close()
		if err := gocv.Canny(gray, &edges, float32(low), float32(high)); err != nil {
			return gocv.NewMat(), fmt.Errorf("canny failed: %w", err)
		}
		return expandGray(edges, color.Channels())
	})
}

// Rotate turns src clockwise by 90, 180 or 270 degrees. Any other angle
// returns an unmodified copy.
func Rotate(src gocv.Mat, angle int) (gocv.Mat, error) {
	if err := validateInput(src); err != nil {
		return gocv.NewMat(), err
	}

	var code gocv.RotateFlag
	switch angle {
	case 90:
		code = gocv.Rotate90Clockwise
	case 180:
		code = gocv.Rotate180Clockwise
	case 270:
		code = gocv.Rotate90CounterClockwise
	default:
		return src.Clone(), nil
	}

	output := gocv.NewMat()
	if err := gocv.Rotate(src, &output, code); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("rotate %d failed: %w", angle, err)
	}
	return output, nil
}

// Flip mirrors src. Horizontal swaps left and right, vertical swaps top and
// bottom; an unrecognized axis returns an unmodified copy.
func Flip(src gocv.Mat, axis FlipAxis) (gocv.Mat, error) {
	if err := validateInput(src); err != nil {
		return gocv.NewMat(), err
	}

	var code int
	switch axis {
	case FlipHorizontal:
		code = 1
	case FlipVertical:
		code = 0
	default:
		return src.Clone(), nil
	}

	output := gocv.NewMat()
	if err := gocv.Flip(src, &output, code); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("flip %s failed: %w", axis, err)
	}
	return output, nil
}

// ScaledSize returns the output dimensions Resize produces for scale > 0.
func ScaledSize(width, height int, scale float64) (int, int) {
	w := int(math.Round(float64(width) * scale))
	h := int(math.Round(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Resize scales src by scale using linear interpolation. scale <= 0 returns
// an unmodified copy.
func Resize(src gocv.Mat, scale float64) (gocv.Mat, error) {
	if err := validateInput(src); err != nil {
		return gocv.NewMat(), err
	}
	if scale <= 0 || math.IsNaN(scale) {
		return src.Clone(), nil
	}

	newWidth, newHeight := ScaledSize(src.Cols(), src.Rows(), scale)
	output := gocv.NewMat()
	if err := gocv.Resize(src, &output, image.Point{X: newWidth, Y: newHeight}, 0, 0, gocv.InterpolationLinear); err != nil {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("resize to %dx%d failed: %w", newWidth, newHeight, err)
	}
	return output, nil
}

// AdjustBrightnessContrast computes clamp(in*contrast + brightness, 0, 255)
// per color channel, truncating the fractional part. Alpha, when present, is
// left untouched.
func AdjustBrightnessContrast(src gocv.Mat, brightness, contrast float64) (gocv.Mat, error) {
	if err := validateInput(src); err != nil {
		return gocv.NewMat(), err
	}

	table := toneTable(brightness, contrast)
	view, err := gocv.NewMatFromBytes(1, len(table), gocv.MatTypeCV8UC1, table[:])
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("brightness/contrast table failed: %w", err)
	}
	defer view.Close()
	lut := view.Clone()
	defer lut.Close()

	return mapColor(src, func(color gocv.Mat) (gocv.Mat, error) {
		output := gocv.NewMat()
		gocv.LUT(color, lut, &output)
		if output.Empty() {
			output.Close()
			return gocv.NewMat(), errors.New("brightness/contrast lookup failed")
		}
		return output, nil
	})
}

// toneTable maps every 8-bit input through in*contrast + brightness. The
// result is clamped to [0, 255] and then truncated toward zero.
func toneTable(brightness, contrast float64) [256]byte {
	var table [256]byte
	for in := range table {
		v := float64(in)*contrast + brightness
		switch {
		case math.IsNaN(v) || v <= 0:
			table[in] = 0
		case v >= 255:
			table[in] = 255
		default:
			table[in] = byte(v)
		}
	}
	return table
}
