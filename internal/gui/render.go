// Mat to display-image conversion for the canvas
package gui

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"golang.org/x/image/draw"
)

// maxDisplayDimension bounds the texture handed to the canvas; larger
// images are downscaled before display. The canvas still fits the result to
// the viewport.
const maxDisplayDimension = 2048

// matToImage converts a Mat into a Go image. BGR(A) ordering is handled by
// gocv.
func matToImage(mat gocv.Mat) (image.Image, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("cannot display empty image")
	}
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert %d-channel image for display: %w", mat.Channels(), err)
	}
	return img, nil
}

// fitImage downscales img so neither side exceeds maxDim, keeping the
// aspect ratio. Images that already fit are returned unchanged.
func fitImage(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	var targetW, targetH int
	if w >= h {
		targetW = maxDim
		targetH = max(1, h*maxDim/w)
	} else {
		targetH = maxDim
		targetW = max(1, w*maxDim/h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// displayImage converts and bounds mat for the canvas.
func displayImage(mat gocv.Mat) (image.Image, error) {
	img, err := matToImage(mat)
	if err != nil {
		return nil, err
	}
	return fitImage(img, maxDisplayDimension), nil
}
