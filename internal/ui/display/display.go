// Package display is the drawing surface every pane is built from.
//
// A Screen composes rectangular regions onto a grid of cells and hands the
// result to a Presenter. Regions are only ever touched from the goroutine that
// runs the control loop.
package display

import "errors"

var (
	// ErrNotApplicable reports an operation that does nothing at the given
	// position, such as printing outside a region
	ErrNotApplicable = errors.New("display: operation not applicable")
	// ErrDestroyed reports use of a region after Destroy
	ErrDestroyed = errors.New("display: region destroyed")
	// ErrGeometry reports a region that cannot be allocated with the requested size
	ErrGeometry = errors.New("display: invalid geometry")
)

// Attr is a set of cell attributes
type Attr uint8

const (
	AttrReverse Attr = 1 << iota
	AttrUnderline
	AttrBold
	AttrError

	AttrNormal Attr = 0
)

// Rect is a position and size in cells
type Rect struct {
	X, Y, W, H int
}

// Region is a rectangular drawing surface
type Region interface {
	// Derive creates a child region positioned relative to this one.
	// The child shares the parent's cells and dies with it.
	Derive(h, w, y, x int) (Region, error)
	// Geometry returns the position the region was created at (relative to
	// its parent for derived regions) and its size
	Geometry() Rect
	Move(y, x int) error
	// AttrAt returns the attributes of the cell under the cursor
	AttrAt() Attr
	// ChangeAttr sets the attributes of every cell from the cursor to the end of the line
	ChangeAttr(a Attr) error
	// SetAttr selects the attributes used by later prints
	SetAttr(a Attr)
	Refresh() error
	Clear() error
	ClearToEOL() error
	Box() error
	Print(y, x int, format string, args ...any) error
	Destroy()
}

// Factory allocates root regions
type Factory interface {
	NewRegion(h, w, y, x int) (Region, error)
}

// Cell is one terminal cell. Wide graphemes occupy a cell with Width 2
// followed by a continuation cell with Width 0.
type Cell struct {
	Text  string
	Width int
	Attr  Attr
}

var blank = Cell{Text: " ", Width: 1}

// Frame is a snapshot of the whole screen
type Frame struct {
	Width, Height    int
	Cells            [][]Cell
	CursorX, CursorY int
	CursorVisible    bool
}

// Line returns row y as plain text
func (f Frame) Line(y int) string {
	if y < 0 || y >= len(f.Cells) {
		return ""
	}
	buf := make([]byte, 0, f.Width)
	for _, c := range f.Cells[y] {
		if c.Width == 0 {
			continue
		}
		buf = append(buf, c.Text...)
	}
	return string(buf)
}

// Presenter puts frames on an actual output
type Presenter interface {
	Present(f Frame) error
	// Sync forces the next frame to be painted from scratch
	Sync() error
	Size() (width, height int)
}
