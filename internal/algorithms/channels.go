// Channel layout helpers shared by the transforms
package algorithms

import (
	"fmt"

	"gocv.io/x/gocv"
)

func validateInput(src gocv.Mat) error {
	if src.Empty() {
		return ErrEmptyInput
	}
	switch src.Channels() {
	case 1, 3, 4:
		return nil
	default:
		return fmt.Errorf("unsupported number of channels: %d", src.Channels())
	}
}

// toGray returns a single-channel luminance copy of src.
func toGray(src gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	var err error
	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 4:
		err = gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		err = gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	}
	if err != nil {
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("luminance conversion failed: %w", err)
	}
	return gray, nil
}

// expandGray re-expands a single-channel Mat to the requested channel count.
func expandGray(gray gocv.Mat, channels int) (gocv.Mat, error) {
	out := gocv.NewMat()
	var err error
	switch channels {
	case 1:
		gray.CopyTo(&out)
	case 4:
		err = gocv.CvtColor(gray, &out, gocv.ColorGrayToBGRA)
	default:
		err = gocv.CvtColor(gray, &out, gocv.ColorGrayToBGR)
	}
	if err != nil {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("channel expansion failed: %w", err)
	}
	return out, nil
}

// toBGR returns a three-channel copy of src, dropping alpha if present.
func toBGR(src gocv.Mat) (gocv.Mat, error) {
	out := gocv.NewMat()
	var err error
	switch src.Channels() {
	case 1:
		err = gocv.CvtColor(src, &out, gocv.ColorGrayToBGR)
	case 4:
		err = gocv.CvtColor(src, &out, gocv.ColorBGRAToBGR)
	default:
		src.CopyTo(&out)
	}
	if err != nil {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("BGR conversion failed: %w", err)
	}
	return out, nil
}

// mapColor applies fn to the color planes of src. For a BGRA source the
// alpha plane is split off first and re-attached to fn's result unchanged,
// so fn only ever sees one or three channels.
func mapColor(src gocv.Mat, fn func(color gocv.Mat) (gocv.Mat, error)) (gocv.Mat, error) {
	if src.Channels() != 4 {
		return fn(src)
	}

	planes := gocv.Split(src)
	defer closeAll(planes)

	color := gocv.NewMat()
	defer color.Close()
	if err := gocv.Merge(planes[:3], &color); err != nil {
		return gocv.NewMat(), fmt.Errorf("split alpha: %w", err)
	}

	processed, err := fn(color)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer processed.Close()

	return attachAlpha(processed, planes[3])
}

// attachAlpha merges a three-channel Mat with a single-channel alpha plane.
func attachAlpha(color, alpha gocv.Mat) (gocv.Mat, error) {
	if color.Channels() != 3 {
		return gocv.NewMat(), fmt.Errorf("cannot attach alpha to %d-channel image", color.Channels())
	}

	colorPlanes := gocv.Split(color)
	defer closeAll(colorPlanes)

	out := gocv.NewMat()
	if err := gocv.Merge(append(colorPlanes, alpha), &out); err != nil {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("attach alpha: %w", err)
	}
	return out, nil
}

func closeAll(mats []gocv.Mat) {
	for i := range mats {
		mats[i].Close()
	}
}
