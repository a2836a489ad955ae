package gui

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestFitImageKeepsSmallImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	assert.Same(t, img, fitImage(img, 100))
}

func TestFitImageKeepsAspectRatio(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{400, 200, 100, 50},
		{200, 400, 50, 100},
		{1000, 1, 100, 1},
	}
	for _, tt := range tests {
		img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
		got := fitImage(img, 100).Bounds()
		assert.Equal(t, tt.wantW, got.Dx())
		assert.Equal(t, tt.wantH, got.Dy())
	}
}

func TestMatToImageHandlesColorOrder(t *testing.T) {
	// BGR (255, 0, 0) is pure blue
	mat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 4, 6, gocv.MatTypeCV8UC3)
	defer mat.Close()

	img, err := displayImage(mat)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())

	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255})
}

func TestMatToImageRejectsEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := displayImage(empty)
	assert.Error(t, err)
}
