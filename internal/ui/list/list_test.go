package list

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subs/internal/domain"
	"subs/internal/ui/display"
	"subs/internal/ui/input"
)

func rowsOf(lines ...string) []domain.Row {
	rows := make([]domain.Row, len(lines))
	for i, line := range lines {
		rows[i] = domain.Row{ID: int64(i + 1), Line: line}
	}
	return rows
}

// newTestList builds a list with two visible rows over a-e
func newTestList(t *testing.T) (*List, *display.Screen, *display.Fake) {
	t.Helper()
	fake := display.NewFake(20, 10)
	scr := display.NewScreen(fake)
	l := New()
	require.NoError(t, l.Init(scr, rowsOf("a", "b", "c", "d", "e"), 0, 0, 10, 4))
	require.Equal(t, 2, l.VisibleRows())
	return l, scr, fake
}

func assertSelectionOnScreen(t *testing.T, l *List) {
	t.Helper()
	if l.Len() == 0 {
		return
	}
	assert.GreaterOrEqual(t, l.Selected(), 0)
	assert.Less(t, l.Selected(), l.Len())
	assert.LessOrEqual(t, l.Offset(), l.Selected())
	assert.Less(t, l.Selected(), l.Offset()+l.VisibleRows())
	assert.LessOrEqual(t, l.Offset(), max(0, l.Len()-l.VisibleRows()))
}

func TestInitRejectsShortList(t *testing.T) {
	scr := display.NewScreen(display.NewFake(10, 10))
	err := New().Init(scr, nil, 0, 0, 10, 1)
	assert.ErrorIs(t, err, ErrTooSmall)
}

func TestInitDrawsBorderAndRows(t *testing.T) {
	_, _, fake := newTestList(t)

	assert.Equal(t, "┌────────┐", fake.Line(0)[:len("┌────────┐")])
	assert.Contains(t, fake.Line(1), "│ a")
	assert.Contains(t, fake.Line(2), "│ b")
	assert.Equal(t, display.AttrReverse, fake.AttrAt(1, 2))
	assert.Equal(t, display.AttrNormal, fake.AttrAt(2, 2))
}

func TestMoveToBelowViewportScrolls(t *testing.T) {
	l, _, fake := newTestList(t)

	require.NoError(t, l.MoveTo(4))

	assert.Equal(t, 4, l.Selected())
	assert.Equal(t, 3, l.Offset())
	assert.Contains(t, fake.Line(1), "d")
	assert.Contains(t, fake.Line(2), "e")
	assert.Equal(t, display.AttrReverse, fake.AttrAt(2, 2))
}

func TestScrollByShiftsOffsetAndSelection(t *testing.T) {
	l, _, _ := newTestList(t)
	require.NoError(t, l.MoveTo(4))

	require.NoError(t, l.ScrollBy(-1))

	assert.Equal(t, 2, l.Offset())
	assert.Equal(t, 3, l.Selected())
}

func TestScrollByAtBoundaryMovesSelection(t *testing.T) {
	l, _, _ := newTestList(t)

	require.NoError(t, l.ScrollBy(-1))
	assert.Equal(t, 0, l.Selected())

	require.NoError(t, l.MoveTo(4))
	require.NoError(t, l.ScrollBy(2))
	assert.Equal(t, 4, l.Selected())
	assert.Equal(t, 3, l.Offset())

	require.NoError(t, l.MoveTo(3))
	require.NoError(t, l.ScrollBy(1))
	assert.Equal(t, 4, l.Selected(), "paging at the bottom edge still moves the selection")
}

func TestMoveToInsideViewportOnlyMovesHighlight(t *testing.T) {
	l, scr, fake := newTestList(t)
	prints := scr.Stats().Prints
	frames := fake.Frames()

	require.NoError(t, l.MoveTo(1))

	assert.Equal(t, prints, scr.Stats().Prints, "no row should be reprinted")
	assert.Equal(t, frames+1, fake.Frames())
	assert.Equal(t, display.AttrNormal, fake.AttrAt(1, 2))
	assert.Equal(t, display.AttrReverse, fake.AttrAt(2, 2))
}

func TestMoveToCurrentSelectionIsNoop(t *testing.T) {
	l, scr, fake := newTestList(t)
	before := scr.Stats()
	frames := fake.Frames()

	require.NoError(t, l.MoveTo(0))
	require.NoError(t, l.MoveTo(-3))

	assert.Equal(t, before, scr.Stats())
	assert.Equal(t, frames, fake.Frames())
}

func TestEmptyListIgnoresMovement(t *testing.T) {
	scr := display.NewScreen(display.NewFake(10, 10))
	l := New()
	require.NoError(t, l.Init(scr, nil, 0, 0, 10, 4))

	require.NoError(t, l.MoveTo(3))
	require.NoError(t, l.ScrollBy(5))
	_, ok := l.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, l.Selected())
}

func TestInitKeepsSelectionWhenGeometryChanges(t *testing.T) {
	l, scr, _ := newTestList(t)
	require.NoError(t, l.MoveTo(4))

	require.NoError(t, l.Init(scr, l.Rows(), 0, 0, 10, 5))
	assert.Equal(t, 4, l.Selected())
	assert.Equal(t, 2, l.Offset())
	assertSelectionOnScreen(t, l)

	require.NoError(t, l.Init(scr, rowsOf("x", "y"), 0, 0, 10, 5))
	assert.Equal(t, 1, l.Selected())
	assertSelectionOnScreen(t, l)
}

func TestInitReusesRegionsForSameGeometry(t *testing.T) {
	l, scr, _ := newTestList(t)
	region := l.Region()

	require.NoError(t, l.Init(scr, rowsOf("x"), 0, 0, 10, 4))
	assert.Same(t, region, l.Region())

	require.NoError(t, l.Init(scr, rowsOf("x"), 1, 0, 10, 4))
	assert.NotSame(t, region, l.Region())
	assert.ErrorIs(t, region.Refresh(), display.ErrDestroyed)
}

func TestSetActiveSwitchesHighlight(t *testing.T) {
	l, _, fake := newTestList(t)

	require.NoError(t, l.SetActive(false))
	assert.Equal(t, display.AttrUnderline, fake.AttrAt(1, 2))

	require.NoError(t, l.SetActive(true))
	assert.Equal(t, display.AttrReverse, fake.AttrAt(1, 2))
}

func TestSetCurrentLine(t *testing.T) {
	l, _, fake := newTestList(t)

	require.NoError(t, l.SetCurrentLine("%s!", "z"))

	assert.Equal(t, "z!", l.Line(0))
	assert.Contains(t, fake.Line(1), "z!")
	assert.Equal(t, int64(1), l.Rows()[0].ID)
}

func TestWriteTitle(t *testing.T) {
	l, _, fake := newTestList(t)

	require.NoError(t, l.WriteTitle(1, " 5 "))
	require.NoError(t, l.WriteTitle(-4, "ab"))
	require.NoError(t, l.WriteTitle(-40, "dropped"))

	assert.Equal(t, "┌ 5 ──ab─┐", fake.Line(0)[:len("┌ 5 ──ab─┐")])
}

func TestHandleKey(t *testing.T) {
	tests := []struct {
		name  string
		start int
		code  int
		count int
		want  int
	}{
		{"down", 0, 'j', 1, 1},
		{"down with count", 0, 'j', 3, 3},
		{"up clamps", 1, 'k', 5, 0},
		{"bottom", 0, 'G', 1, 4},
		{"top", 3, 'g', 1, 0},
		{"arrow", 0, input.KeyDown, 2, 2},
		{"page down", 0, input.KeyPgDn, 1, 2},
		{"viewport bottom", 0, 'L', 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, _ := newTestList(t)
			require.NoError(t, l.MoveTo(tt.start))

			handled, err := l.HandleKey(tt.code, tt.count)
			require.NoError(t, err)
			assert.True(t, handled)
			assert.Equal(t, tt.want, l.Selected())
			assertSelectionOnScreen(t, l)
		})
	}

	l, _, _ := newTestList(t)
	handled, err := l.HandleKey('x', 1)
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestRandomMovementKeepsSelectionOnScreen(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	fake := display.NewFake(30, 30)
	scr := display.NewScreen(fake)

	for n := 0; n < 12; n++ {
		for height := 3; height < 9; height++ {
			lines := make([]string, n)
			for i := range lines {
				lines[i] = fmt.Sprintf("row %d", i)
			}
			l := New()
			require.NoError(t, l.Init(scr, rowsOf(lines...), 0, 0, 12, height))
			for step := 0; step < 50; step++ {
				if rng.Intn(2) == 0 {
					require.NoError(t, l.MoveTo(rng.Intn(n+4)-2))
				} else {
					require.NoError(t, l.ScrollBy(rng.Intn(9)-4))
				}
				assertSelectionOnScreen(t, l)
			}
			l.Destroy()
		}
	}
}
