package display

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// Stats counts work done by a Screen; tests use it to tell a highlight move
// from a full redraw
type Stats struct {
	Prints   int
	Presents int
	Syncs    int
}

// Screen owns the cell grid that regions are composed onto
type Screen struct {
	p             Presenter
	width, height int
	grid          [][]Cell

	cursorX, cursorY int
	cursorVisible    bool

	stats Stats
}

// NewScreen creates a screen sized to the presenter
func NewScreen(p Presenter) *Screen {
	s := &Screen{p: p}
	w, h := p.Size()
	s.alloc(w, h)
	return s
}

func (s *Screen) alloc(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	s.width, s.height = w, h
	s.grid = newCells(h, w)
}

func newCells(h, w int) [][]Cell {
	cells := make([][]Cell, h)
	for y := range cells {
		row := make([]Cell, w)
		for x := range row {
			row[x] = blank
		}
		cells[y] = row
	}
	return cells
}

// Fit adopts the presenter's current size, discarding the grid when it changed
func (s *Screen) Fit() {
	w, h := s.p.Size()
	if w != s.width || h != s.height {
		s.alloc(w, h)
	}
}

// Size returns the grid width and height
func (s *Screen) Size() (width, height int) {
	return s.width, s.height
}

// Stats returns the work counters
func (s *Screen) Stats() Stats {
	return s.stats
}

// Clear blanks the whole grid
func (s *Screen) Clear() error {
	for _, row := range s.grid {
		for x := range row {
			row[x] = blank
		}
	}
	return nil
}

// Refresh presents the grid
func (s *Screen) Refresh() error {
	s.stats.Presents++
	return s.p.Present(s.snapshot())
}

// RedrawFromScratch repaints every cell, used after the terminal was
// disturbed by another program
func (s *Screen) RedrawFromScratch() error {
	s.stats.Syncs++
	if err := s.p.Sync(); err != nil {
		return err
	}
	return s.Refresh()
}

// SetCursorVisible shows or hides the cursor on later frames
func (s *Screen) SetCursorVisible(v bool) {
	s.cursorVisible = v
}

func (s *Screen) snapshot() Frame {
	cells := make([][]Cell, len(s.grid))
	for y, row := range s.grid {
		cells[y] = append([]Cell(nil), row...)
	}
	return Frame{
		Width:         s.width,
		Height:        s.height,
		Cells:         cells,
		CursorX:       s.cursorX,
		CursorY:       s.cursorY,
		CursorVisible: s.cursorVisible,
	}
}

// NewRegion allocates a root region with its own cells
func (s *Screen) NewRegion(h, w, y, x int) (Region, error) {
	if h <= 0 || w <= 0 || y < 0 || x < 0 {
		return nil, fmt.Errorf("%w: %dx%d at %d,%d", ErrGeometry, w, h, x, y)
	}
	win := &window{
		scr:  s,
		buf:  newCells(h, w),
		y:    y,
		x:    x,
		absY: y,
		absX: x,
		h:    h,
		w:    w,
	}
	win.root = win
	return win, nil
}

type window struct {
	scr    *Screen
	root   *window
	parent *window
	buf    [][]Cell // root only

	y, x       int // as created
	absY, absX int // on screen
	offY, offX int // inside the root's cells
	h, w       int

	cy, cx int
	attr   Attr

	destroyed bool
	children  []*window
}

func (w *window) check() error {
	if w == nil || w.destroyed {
		return ErrDestroyed
	}
	return nil
}

func (w *window) cell(y, x int) *Cell {
	return &w.root.buf[w.offY+y][w.offX+x]
}

func (w *window) Derive(h, wd, y, x int) (Region, error) {
	if err := w.check(); err != nil {
		return nil, err
	}
	if h <= 0 || wd <= 0 || y < 0 || x < 0 || y+h > w.h || x+wd > w.w {
		return nil, fmt.Errorf("%w: %dx%d at %d,%d inside %dx%d", ErrGeometry, wd, h, x, y, w.w, w.h)
	}
	child := &window{
		scr:    w.scr,
		root:   w.root,
		parent: w,
		y:      y,
		x:      x,
		absY:   w.absY + y,
		absX:   w.absX + x,
		offY:   w.offY + y,
		offX:   w.offX + x,
		h:      h,
		w:      wd,
	}
	w.children = append(w.children, child)
	return child, nil
}

func (w *window) Geometry() Rect {
	return Rect{X: w.x, Y: w.y, W: w.w, H: w.h}
}

func (w *window) Move(y, x int) error {
	if err := w.check(); err != nil {
		return err
	}
	if y < 0 || y >= w.h || x < 0 || x >= w.w {
		return ErrNotApplicable
	}
	w.cy, w.cx = y, x
	return nil
}

func (w *window) AttrAt() Attr {
	if w.check() != nil || w.cy >= w.h || w.cx >= w.w {
		return AttrNormal
	}
	return w.cell(w.cy, w.cx).Attr
}

func (w *window) ChangeAttr(a Attr) error {
	if err := w.check(); err != nil {
		return err
	}
	if w.cy >= w.h {
		return ErrNotApplicable
	}
	for x := w.cx; x < w.w; x++ {
		w.cell(w.cy, x).Attr = a
	}
	return nil
}

func (w *window) SetAttr(a Attr) {
	w.attr = a
}

func (w *window) Refresh() error {
	if err := w.check(); err != nil {
		return err
	}
	s := w.scr
	for y := 0; y < w.h; y++ {
		sy := w.absY + y
		if sy >= s.height {
			break
		}
		for x := 0; x < w.w; x++ {
			sx := w.absX + x
			if sx >= s.width {
				break
			}
			c := *w.cell(y, x)
			if c.Width == 2 && sx+1 >= s.width {
				c = blank
			}
			s.grid[sy][sx] = c
		}
	}
	s.cursorY = min(w.absY+w.cy, max(s.height-1, 0))
	s.cursorX = min(w.absX+w.cx, max(s.width-1, 0))
	return s.Refresh()
}

func (w *window) Clear() error {
	if err := w.check(); err != nil {
		return err
	}
	for y := 0; y < w.h; y++ {
		for x := 0; x < w.w; x++ {
			*w.cell(y, x) = blank
		}
	}
	w.cy, w.cx = 0, 0
	return nil
}

func (w *window) ClearToEOL() error {
	if err := w.check(); err != nil {
		return err
	}
	if w.cy >= w.h {
		return ErrNotApplicable
	}
	for x := w.cx; x < w.w; x++ {
		*w.cell(w.cy, x) = blank
	}
	return nil
}

func (w *window) Box() error {
	if err := w.check(); err != nil {
		return err
	}
	if w.h < 2 || w.w < 2 {
		return ErrNotApplicable
	}
	put := func(y, x int, s string) {
		*w.cell(y, x) = Cell{Text: s, Width: 1}
	}
	last, right := w.h-1, w.w-1
	for x := 1; x < right; x++ {
		put(0, x, "─")
		put(last, x, "─")
	}
	for y := 1; y < last; y++ {
		put(y, 0, "│")
		put(y, right, "│")
	}
	put(0, 0, "┌")
	put(0, right, "┐")
	put(last, 0, "└")
	put(last, right, "┘")
	return nil
}

// Print writes formatted text starting at (y, x). Text wraps at the right
// edge and stops at the bottom; a newline clears the rest of the line.
func (w *window) Print(y, x int, format string, args ...any) error {
	if err := w.check(); err != nil {
		return err
	}
	if y < 0 || y >= w.h || x < 0 || x >= w.w {
		return ErrNotApplicable
	}
	w.scr.stats.Prints++
	w.cy, w.cx = y, x

	text := fmt.Sprintf(format, args...)
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if w.cy >= w.h {
			break
		}
		cluster := g.Str()
		switch cluster {
		case "\n", "\r\n":
			for cx := w.cx; cx < w.w; cx++ {
				*w.cell(w.cy, cx) = blank
			}
			w.cy, w.cx = w.cy+1, 0
			continue
		case "\t":
			cluster = " "
		}
		width := g.Width()
		if width <= 0 {
			continue
		}
		if width > w.w {
			continue
		}
		if w.cx+width > w.w {
			w.cy, w.cx = w.cy+1, 0
			if w.cy >= w.h {
				break
			}
		}
		*w.cell(w.cy, w.cx) = Cell{Text: cluster, Width: width, Attr: w.attr}
		if width == 2 {
			*w.cell(w.cy, w.cx+1) = Cell{Width: 0, Attr: w.attr}
		}
		w.cx += width
	}
	if w.cy >= w.h {
		w.cy, w.cx = w.h-1, w.w-1
	} else if w.cx >= w.w {
		w.cx = w.w - 1
	}
	return nil
}

// Destroy releases the region and everything derived from it. Calling it
// again is harmless.
func (w *window) Destroy() {
	if w == nil || w.destroyed {
		return
	}
	w.destroyed = true
	for _, c := range w.children {
		c.Destroy()
	}
	w.children = nil
	if w.parent != nil {
		siblings := w.parent.children
		for i, c := range siblings {
			if c == w {
				w.parent.children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	w.buf = nil
}
