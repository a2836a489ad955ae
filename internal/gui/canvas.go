// Image canvas showing either the current image or a live preview
package gui

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ImageCanvas displays one image scaled to fit the viewport
type ImageCanvas struct {
	logger logrus.FieldLogger

	image      *canvas.Image
	background *canvas.Rectangle
	container  *fyne.Container
}

func NewImageCanvas(logger logrus.FieldLogger) *ImageCanvas {
	ic := &ImageCanvas{logger: logger}
	ic.initializeUI()
	return ic
}

func (ic *ImageCanvas) initializeUI() {
	placeholder := image.NewRGBA(image.Rect(0, 0, 1, 1))
	placeholder.Set(0, 0, color.RGBA{128, 128, 128, 255})

	ic.image = canvas.NewImageFromImage(placeholder)
	ic.image.FillMode = canvas.ImageFillContain
	ic.image.ScaleMode = canvas.ImageScaleSmooth
	ic.image.SetMinSize(fyne.NewSize(400, 300))

	ic.background = canvas.NewRectangle(color.RGBA{128, 128, 128, 255})
	ic.container = container.NewStack(ic.background, ic.image)
}

func (ic *ImageCanvas) GetContainer() fyne.CanvasObject {
	return ic.container
}

// Show converts mat and displays it. Must be called on the UI goroutine.
func (ic *ImageCanvas) Show(mat gocv.Mat) {
	img, err := displayImage(mat)
	if err != nil {
		ic.logger.WithError(err).Error("CANVAS: Failed to convert image")
		return
	}

	ic.image.Image = img
	ic.image.Refresh()

	ic.logger.WithFields(logrus.Fields{
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("CANVAS: Image displayed")
}
