package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"image-editor/internal/algorithms"
)

func TestLoadResetsSession(t *testing.T) {
	h, img := newLoadedHistory(t, 20, 10)

	assert.True(t, h.HasImage())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, "/photos/input.png", h.SourcePath())
	assert.NotEmpty(t, h.Session())

	requireSameImage(t, img, h.Current())
	original := track(t, h.Original())
	requireSameImage(t, original, h.Current())
}

func TestRevertToOriginalIsUndoable(t *testing.T) {
	h, img := newLoadedHistory(t, 20, 10)
	edited := testImage(t, 20, 10, 4)
	require.NoError(t, h.Commit(edited))

	original := track(t, h.Original())
	require.NoError(t, h.Commit(original))
	requireSameImage(t, img, h.Current())
	assert.Equal(t, 2, h.UndoDepth())

	// The returned copy is independent of the stored original.
	original.SetTo(gocv.NewScalar(0, 0, 0, 0))
	again := track(t, h.Original())
	requireSameImage(t, img, again)

	require.True(t, h.Undo())
	requireSameImage(t, edited, h.Current())
}

func TestLoadClearsStacksOfPreviousSession(t *testing.T) {
	h, _ := newLoadedHistory(t, 20, 10)
	firstSession := h.Session()

	require.NoError(t, h.Commit(testImage(t, 20, 10, 1)))
	require.NoError(t, h.Commit(testImage(t, 20, 10, 2)))
	require.True(t, h.Undo())
	require.Equal(t, 1, h.UndoDepth())
	require.Equal(t, 1, h.RedoDepth())

	next := testImage(t, 8, 8, 3)
	require.NoError(t, h.Load(next, "/photos/next.jpg"))

	assert.Equal(t, 0, h.UndoDepth())
	assert.Equal(t, 0, h.RedoDepth())
	assert.Equal(t, "/photos/next.jpg", h.SourcePath())
	assert.NotEqual(t, firstSession, h.Session())
	requireSameImage(t, next, h.Current())
}

func TestFailedLoadLeavesSessionUntouched(t *testing.T) {
	h, _ := newLoadedHistory(t, 20, 10)
	committed := testImage(t, 20, 10, 1)
	require.NoError(t, h.Commit(committed))

	empty := gocv.NewMat()
	defer empty.Close()

	err := h.Load(empty, "/photos/broken.png")
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "/photos/broken.png", loadErr.Path)

	assert.Equal(t, 1, h.UndoDepth())
	assert.Equal(t, "/photos/input.png", h.SourcePath())
	requireSameImage(t, committed, h.Current())
}

func TestCommitBeforeLoad(t *testing.T) {
	h := NewHistory(nil, quietLogger())
	defer h.Close()

	assert.ErrorIs(t, h.Commit(testImage(t, 4, 4, 0)), ErrNoImage)
	assert.False(t, h.Undo())
	assert.False(t, h.Redo())
	_, _, err := h.Snapshot()
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestCommitClearsRedo(t *testing.T) {
	h, _ := newLoadedHistory(t, 12, 12)

	for i := 1; i <= 3; i++ {
		require.NoError(t, h.Commit(testImage(t, 12, 12, i)))
	}
	require.True(t, h.Undo())
	require.True(t, h.Undo())
	require.Equal(t, 2, h.RedoDepth())

	require.NoError(t, h.Commit(testImage(t, 12, 12, 9)))
	assert.Equal(t, 0, h.RedoDepth())
	assert.False(t, h.Redo())
	assert.Equal(t, 2, h.UndoDepth())
}

func TestCommitCopiesInput(t *testing.T) {
	h, _ := newLoadedHistory(t, 10, 10)

	next := testImage(t, 10, 10, 4)
	want := append([]byte(nil), next.ToBytes()...)
	require.NoError(t, h.Commit(next))

	next.SetTo(gocv.NewScalar(0, 0, 0, 0))
	assert.Equal(t, want, h.Current().ToBytes())
}

func TestUndoRedoEmptyStacksAreNoOps(t *testing.T) {
	h, img := newLoadedHistory(t, 10, 10)
	epoch := h.Epoch()

	assert.False(t, h.Undo())
	assert.False(t, h.Redo())
	assert.Equal(t, epoch, h.Epoch())
	requireSameImage(t, img, h.Current())
}

func TestCommitsThenUndosRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		h, img := newLoadedHistory(t, 16, 9)

		for i := 1; i <= n; i++ {
			require.NoError(t, h.Commit(testImage(t, 16, 9, i)))
			assert.Equal(t, 0, h.RedoDepth())
		}
		for i := 0; i < n; i++ {
			require.True(t, h.Undo())
		}

		requireSameImage(t, img, h.Current())
		assert.False(t, h.CanUndo())
		assert.Equal(t, n, h.RedoDepth())
	}
}

func TestUndoThenRedoIsIdentity(t *testing.T) {
	h, _ := newLoadedHistory(t, 10, 10)
	require.NoError(t, h.Commit(testImage(t, 10, 10, 1)))
	require.NoError(t, h.Commit(testImage(t, 10, 10, 2)))

	before := append([]byte(nil), h.Current().ToBytes()...)
	require.True(t, h.Undo())
	require.True(t, h.Redo())
	assert.Equal(t, before, h.Current().ToBytes())

	require.True(t, h.Undo())
	middle := append([]byte(nil), h.Current().ToBytes()...)
	require.True(t, h.Redo())
	require.True(t, h.Undo())
	assert.Equal(t, middle, h.Current().ToBytes())
}

func TestEditScenarioWithRotation(t *testing.T) {
	h, img := newLoadedHistory(t, 100, 50)

	gray, err := algorithms.Grayscale(h.Current())
	require.NoError(t, err)
	track(t, gray)
	require.NoError(t, h.Commit(gray))

	rotated, err := algorithms.Rotate(h.Current(), 90)
	require.NoError(t, err)
	track(t, rotated)
	require.NoError(t, h.Commit(rotated))

	info, err := h.Info()
	require.NoError(t, err)
	assert.Equal(t, 50, info.Width)
	assert.Equal(t, 100, info.Height)

	require.True(t, h.Undo())
	requireSameImage(t, gray, h.Current())
	assert.Equal(t, 100, h.Current().Cols())
	assert.Equal(t, 50, h.Current().Rows())

	require.True(t, h.Undo())
	requireSameImage(t, img, h.Current())

	require.True(t, h.Redo())
	require.True(t, h.Redo())
	requireSameImage(t, rotated, h.Current())
	assert.Equal(t, 50, h.Current().Cols())
	assert.Equal(t, 100, h.Current().Rows())
}

func TestCommitAtRejectsStaleEpoch(t *testing.T) {
	h, _ := newLoadedHistory(t, 10, 10)

	_, epoch, err := h.Snapshot()
	require.NoError(t, err)
	require.NoError(t, h.Commit(testImage(t, 10, 10, 1)))

	assert.ErrorIs(t, h.CommitAt(epoch, testImage(t, 10, 10, 2)), ErrStaleResult)
	assert.Equal(t, 1, h.UndoDepth())

	assert.NoError(t, h.CommitAt(h.Epoch(), testImage(t, 10, 10, 3)))
	assert.Equal(t, 2, h.UndoDepth())
}

func TestSaveWithoutTargetPath(t *testing.T) {
	store := &fakeStore{}
	h := NewHistory(store, quietLogger())
	defer h.Close()
	require.NoError(t, h.Load(testImage(t, 8, 8, 0), ""))

	err := h.Save("")
	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.True(t, IsNoTargetPath(err))
	assert.Empty(t, h.SourcePath())
	assert.Empty(t, store.paths)
}

func TestSaveUpdatesSourcePathOnlyOnSuccess(t *testing.T) {
	store := &fakeStore{}
	h := NewHistory(store, quietLogger())
	defer h.Close()
	require.NoError(t, h.Load(testImage(t, 8, 8, 0), "/photos/a.png"))

	require.NoError(t, h.Save(""))
	assert.Equal(t, []string{"/photos/a.png"}, store.paths)

	require.NoError(t, h.Save("/photos/b.bmp"))
	assert.Equal(t, "/photos/b.bmp", h.SourcePath())

	store.fail = errors.New("disk full")
	err := h.Save("/photos/c.jpg")
	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Equal(t, "/photos/c.jpg", saveErr.Path)
	assert.Equal(t, "/photos/b.bmp", h.SourcePath())
}

func TestSaveDoesNotTouchHistory(t *testing.T) {
	h, _ := newLoadedHistory(t, 8, 8)
	require.NoError(t, h.Commit(testImage(t, 8, 8, 1)))
	epoch := h.Epoch()

	require.NoError(t, h.Save("/photos/out.png"))
	assert.Equal(t, 1, h.UndoDepth())
	assert.Equal(t, epoch, h.Epoch())
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "input.png - 20x10px", StatusText("/photos/input.png", 20, 10))
	assert.Equal(t, "Unsaved image - 5x7px", StatusText("", 5, 7))
}
