package core

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testImage(t *testing.T, width, height int, seed int) gocv.Mat {
	t.Helper()

	data := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < 3; c++ {
				data[(y*width+x)*3+c] = byte((x*5 + y*11 + c*70 + seed*17) % 256)
			}
		}
	}
	view, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	defer view.Close()

	mat := view.Clone()
	t.Cleanup(func() { mat.Close() })
	return mat
}

func track(t *testing.T, m gocv.Mat) gocv.Mat {
	t.Helper()
	t.Cleanup(func() { m.Close() })
	return m
}

func requireSameImage(t *testing.T, want, got gocv.Mat) {
	t.Helper()
	require.Equal(t, want.Cols(), got.Cols(), "width")
	require.Equal(t, want.Rows(), got.Rows(), "height")
	require.Equal(t, want.Channels(), got.Channels(), "channels")
	require.Equal(t, want.ToBytes(), got.ToBytes(), "pixels")
}

// fakeStore records saves instead of encoding them.
type fakeStore struct {
	mu    sync.Mutex
	paths []string
	fail  error
}

func (s *fakeStore) SaveImage(mat gocv.Mat, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail != nil {
		return s.fail
	}
	if mat.Empty() {
		return errors.New("empty image")
	}
	s.paths = append(s.paths, path)
	return nil
}

func newLoadedHistory(t *testing.T, width, height int) (*History, gocv.Mat) {
	t.Helper()

	h := NewHistory(&fakeStore{}, quietLogger())
	t.Cleanup(h.Close)

	img := testImage(t, width, height, 0)
	require.NoError(t, h.Load(img, "/photos/input.png"))
	return h, img
}
