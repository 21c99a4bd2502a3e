package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScreen(t *testing.T, w, h int) (*Screen, *Fake) {
	t.Helper()
	fake := NewFake(w, h)
	return NewScreen(fake), fake
}

func TestPrintAndRefresh(t *testing.T) {
	scr, fake := newTestScreen(t, 20, 5)
	win, err := scr.NewRegion(3, 10, 1, 2)
	require.NoError(t, err)

	require.NoError(t, win.Print(0, 0, "hello %d", 42))
	require.NoError(t, win.Refresh())

	assert.Equal(t, "  hello 42          ", fake.Line(1))
	assert.Equal(t, 1, fake.Frames())
	assert.Equal(t, 1, scr.Stats().Prints)
}

func TestPrintWrapsAndStopsAtBottom(t *testing.T) {
	scr, fake := newTestScreen(t, 4, 2)
	win, err := scr.NewRegion(2, 4, 0, 0)
	require.NoError(t, err)

	require.NoError(t, win.Print(0, 0, "abcdefghij"))
	require.NoError(t, win.Refresh())

	assert.Equal(t, "abcd", fake.Line(0))
	assert.Equal(t, "efgh", fake.Line(1))
}

func TestPrintNewlineClearsRestOfLine(t *testing.T) {
	scr, fake := newTestScreen(t, 6, 2)
	win, err := scr.NewRegion(2, 6, 0, 0)
	require.NoError(t, err)

	require.NoError(t, win.Print(0, 0, "xxxxxx"))
	require.NoError(t, win.Print(0, 0, "ab\ncd"))
	require.NoError(t, win.Refresh())

	assert.Equal(t, "ab    ", fake.Line(0))
	assert.Equal(t, "cd    ", fake.Line(1))
}

func TestPrintWideGraphemes(t *testing.T) {
	scr, fake := newTestScreen(t, 6, 1)
	win, err := scr.NewRegion(1, 6, 0, 0)
	require.NoError(t, err)

	require.NoError(t, win.Print(0, 0, "日本x"))
	require.NoError(t, win.Refresh())

	frame := fake.Last()
	assert.Equal(t, 2, frame.Cells[0][0].Width)
	assert.Equal(t, 0, frame.Cells[0][1].Width)
	assert.Equal(t, "日本x ", fake.Line(0))
}

func TestPrintOutsideRegionIsNotApplicable(t *testing.T) {
	scr, _ := newTestScreen(t, 10, 10)
	win, err := scr.NewRegion(2, 2, 0, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, win.Print(2, 0, "x"), ErrNotApplicable)
	assert.ErrorIs(t, win.Move(0, 5), ErrNotApplicable)
}

func TestDeriveIsClippedToParent(t *testing.T) {
	scr, fake := newTestScreen(t, 10, 4)
	root, err := scr.NewRegion(4, 10, 0, 0)
	require.NoError(t, err)

	_, err = root.Derive(5, 2, 0, 0)
	assert.ErrorIs(t, err, ErrGeometry)

	child, err := root.Derive(2, 6, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, Rect{X: 2, Y: 1, W: 6, H: 2}, child.Geometry())

	require.NoError(t, child.Print(0, 0, "child"))
	require.NoError(t, root.Refresh())
	assert.Equal(t, "  child   ", fake.Line(1))
}

func TestDestroyCascadesAndIsIdempotent(t *testing.T) {
	scr, _ := newTestScreen(t, 10, 4)
	root, err := scr.NewRegion(4, 10, 0, 0)
	require.NoError(t, err)
	child, err := root.Derive(2, 2, 0, 0)
	require.NoError(t, err)

	root.Destroy()
	root.Destroy()

	assert.ErrorIs(t, child.Print(0, 0, "x"), ErrDestroyed)
	assert.ErrorIs(t, root.Refresh(), ErrDestroyed)
	child.Destroy()
}

func TestBoxAndAttributes(t *testing.T) {
	scr, fake := newTestScreen(t, 5, 3)
	win, err := scr.NewRegion(3, 5, 0, 0)
	require.NoError(t, err)

	require.NoError(t, win.Box())
	require.NoError(t, win.Move(1, 1))
	require.NoError(t, win.ChangeAttr(AttrReverse))
	assert.Equal(t, AttrReverse, win.AttrAt())
	require.NoError(t, win.Refresh())

	assert.Equal(t, "┌───┐", fake.Line(0))
	assert.Equal(t, "└───┘", fake.Line(2))
	assert.Equal(t, AttrNormal, fake.AttrAt(1, 0))
	assert.Equal(t, AttrReverse, fake.AttrAt(1, 1))
	assert.Equal(t, AttrReverse, fake.AttrAt(1, 4))
}

func TestPresenterFailureIsReturned(t *testing.T) {
	scr, fake := newTestScreen(t, 5, 3)
	win, err := scr.NewRegion(1, 1, 0, 0)
	require.NoError(t, err)

	boom := errors.New("backend gone")
	fake.Fail = boom
	assert.ErrorIs(t, win.Refresh(), boom)
	assert.ErrorIs(t, scr.RedrawFromScratch(), boom)
}

func TestFitAdoptsNewSize(t *testing.T) {
	scr, fake := newTestScreen(t, 5, 3)
	fake.SetSize(8, 2)
	scr.Fit()

	w, h := scr.Size()
	assert.Equal(t, 8, w)
	assert.Equal(t, 2, h)

	require.NoError(t, scr.RedrawFromScratch())
	assert.Equal(t, 1, fake.Syncs())
	assert.Equal(t, 8, fake.Last().Width)
}
