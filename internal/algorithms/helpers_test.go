package algorithms

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// gradient builds a width x height image with a per-pixel pattern that makes
// every orientation distinguishable.
func gradient(t *testing.T, width, height, channels int) gocv.Mat {
	t.Helper()

	data := make([]byte, width*height*channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				data[(y*width+x)*channels+c] = byte((x*7 + y*13 + c*40) % 256)
			}
		}
	}
	return fromBytes(t, width, height, channels, data)
}

func solid(t *testing.T, width, height, channels int, value byte) gocv.Mat {
	t.Helper()

	data := make([]byte, width*height*channels)
	for i := range data {
		data[i] = value
	}
	return fromBytes(t, width, height, channels, data)
}

func fromBytes(t *testing.T, width, height, channels int, data []byte) gocv.Mat {
	t.Helper()

	types := map[int]gocv.MatType{1: gocv.MatTypeCV8UC1, 3: gocv.MatTypeCV8UC3, 4: gocv.MatTypeCV8UC4}
	view, err := gocv.NewMatFromBytes(height, width, types[channels], data)
	require.NoError(t, err)
	defer view.Close()

	mat := view.Clone()
	t.Cleanup(func() { mat.Close() })
	return mat
}

// track closes m when the test ends.
func track(t *testing.T, m gocv.Mat) gocv.Mat {
	t.Helper()
	t.Cleanup(func() { m.Close() })
	return m
}

func pixel(m gocv.Mat, x, y int) []byte {
	channels := m.Channels()
	data := m.ToBytes()
	offset := (y*m.Cols() + x) * channels
	return data[offset : offset+channels]
}

func requireSameImage(t *testing.T, want, got gocv.Mat) {
	t.Helper()
	require.Equal(t, want.Cols(), got.Cols(), "width")
	require.Equal(t, want.Rows(), got.Rows(), "height")
	require.Equal(t, want.Channels(), got.Channels(), "channels")
	require.Equal(t, want.ToBytes(), got.ToBytes(), "pixels")
}
