// Package list implements the scrollable single-selection row view every
// pane is built from, plus its incremental search.
package list

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/x/ansi"

	"subs/internal/domain"
	"subs/internal/ui/display"
	"subs/internal/ui/input"
)

// ErrTooSmall is returned when a list has no room for its border
var ErrTooSmall = errors.New("list: height too small")

const (
	borderSize = 1
	innerSpace = 1
)

// List is a bordered, virtualized view over rows. Only the visible slice of
// rows is drawn; the selection is always kept on screen.
type List struct {
	root    display.Region
	content display.Region

	rows   []domain.Row
	sel    int
	offset int

	x, y, width, height int

	highlight display.Attr
}

// New creates an empty, active list. Init must be called before drawing.
func New() *List {
	return &List{highlight: display.AttrReverse}
}

// Init replaces the rows and (re)builds the regions for the given geometry.
// Regions are reused when the geometry is unchanged. The previous selection
// is kept when it is still in range.
func (l *List) Init(f display.Factory, rows []domain.Row, x, y, width, height int) error {
	if height < 2*borderSize {
		return fmt.Errorf("%w: %d", ErrTooSmall, height)
	}

	if l.root != nil && x == l.x && y == l.y && width == l.width && height == l.height {
		if err := l.root.Clear(); err != nil {
			return err
		}
	} else {
		l.destroyRegions()
		root, err := f.NewRegion(height, width, y, x)
		if err != nil {
			return fmt.Errorf("failed to create list window: %w", err)
		}
		l.root = root
		ch := height - 2*borderSize
		cw := width - 2*(borderSize+innerSpace)
		if ch > 0 && cw > 0 {
			content, err := root.Derive(ch, cw, borderSize, borderSize+innerSpace)
			if err != nil {
				l.destroyRegions()
				return fmt.Errorf("failed to create list content: %w", err)
			}
			l.content = content
		}
		l.x, l.y, l.width, l.height = x, y, width, height
	}

	l.rows = rows
	l.clamp()
	return l.Redraw()
}

func (l *List) destroyRegions() {
	if l.root != nil {
		l.root.Destroy()
	}
	l.root, l.content = nil, nil
}

// Destroy releases the regions; the list can be initialized again
func (l *List) Destroy() {
	l.destroyRegions()
	l.x, l.y, l.width, l.height = 0, 0, 0, 0
}

// VisibleRows is the number of rows the content area can show
func (l *List) VisibleRows() int {
	return max(l.height-2*borderSize, 0)
}

func (l *List) maxOffset() int {
	return max(len(l.rows)-l.VisibleRows(), 0)
}

func (l *List) clamp() {
	n := len(l.rows)
	if n == 0 {
		l.sel, l.offset = 0, 0
		return
	}
	l.sel = min(max(l.sel, 0), n-1)
	l.offset = min(max(l.offset, 0), l.maxOffset())
	rows := l.VisibleRows()
	if l.sel < l.offset {
		l.offset = l.sel
	} else if rows > 0 && l.sel >= l.offset+rows {
		l.offset = l.sel + 1 - rows
	} else if rows == 0 {
		l.offset = l.sel
	}
}

// Redraw draws the visible rows and the border
func (l *List) Redraw() error {
	if l.root == nil {
		return nil
	}
	if err := l.drawContent(); err != nil {
		return err
	}
	if err := l.root.Box(); err != nil {
		return err
	}
	return l.root.Refresh()
}

func (l *List) drawContent() error {
	if l.content == nil {
		return nil
	}
	if err := l.content.Clear(); err != nil {
		return err
	}
	cw := l.content.Geometry().W
	for i := 0; i < l.VisibleRows() && l.offset+i < len(l.rows); i++ {
		line := ansi.Truncate(l.rows[l.offset+i].Line, cw, "")
		if line == "" {
			continue
		}
		if err := l.content.Print(i, 0, "%s", line); err != nil {
			return err
		}
	}
	return l.paint(l.sel, true)
}

// paint sets or clears the highlight on row i
func (l *List) paint(i int, on bool) error {
	if l.content == nil || len(l.rows) == 0 {
		return nil
	}
	if err := l.content.Move(i-l.offset, 0); err != nil {
		return err
	}
	attr := l.content.AttrAt() &^ (display.AttrReverse | display.AttrUnderline)
	if on {
		attr |= l.highlight
	}
	return l.content.ChangeAttr(attr)
}

// MoveTo selects row i, clamped to the rows. Moving inside the viewport
// only moves the highlight; otherwise the viewport follows and the content
// is redrawn.
func (l *List) MoveTo(i int) error {
	n := len(l.rows)
	if n == 0 {
		return nil
	}
	i = min(max(i, 0), n-1)
	if i == l.sel {
		return nil
	}
	rows := l.VisibleRows()
	if l.content != nil && i >= l.offset && i < l.offset+rows {
		if err := l.paint(l.sel, false); err != nil {
			return err
		}
		l.sel = i
		if err := l.paint(l.sel, true); err != nil {
			return err
		}
		return l.content.Refresh()
	}
	if i < l.offset {
		l.offset = i
	} else {
		l.offset = i + 1 - max(rows, 1)
	}
	l.sel = i
	return l.redrawContent()
}

// ScrollBy moves the viewport by delta rows, taking the selection along.
// At a scroll boundary the selection moves instead.
func (l *List) ScrollBy(delta int) error {
	n := len(l.rows)
	if n == 0 || delta == 0 {
		return nil
	}
	target := min(max(l.offset+delta, 0), l.maxOffset())
	if target == l.offset {
		return l.MoveTo(min(max(l.sel+delta, 0), n-1))
	}
	applied := target - l.offset
	l.offset = target
	l.sel = min(max(l.sel+applied, 0), n-1)
	return l.redrawContent()
}

func (l *List) redrawContent() error {
	if l.content == nil {
		return nil
	}
	if err := l.drawContent(); err != nil {
		return err
	}
	return l.content.Refresh()
}

// SetActive switches the highlight between the focused and unfocused style
func (l *List) SetActive(active bool) error {
	hl := display.AttrUnderline
	if active {
		hl = display.AttrReverse
	}
	if hl == l.highlight {
		return nil
	}
	l.highlight = hl
	if l.content == nil || len(l.rows) == 0 {
		return nil
	}
	if err := l.paint(l.sel, true); err != nil {
		return err
	}
	return l.content.Refresh()
}

// Active reports whether the focused highlight is in use
func (l *List) Active() bool {
	return l.highlight == display.AttrReverse
}

// SetCurrentLine replaces the text of the selected row
func (l *List) SetCurrentLine(format string, args ...any) error {
	if len(l.rows) == 0 {
		return nil
	}
	l.rows[l.sel].Line = fmt.Sprintf(format, args...)
	return l.redrawContent()
}

// Box redraws the border, erasing any title. Nothing is refreshed.
func (l *List) Box() error {
	if l.root == nil {
		return nil
	}
	return l.root.Box()
}

// WriteTitle writes text into the top border. A negative x is measured from
// the right edge; text that would start before the left edge is dropped.
func (l *List) WriteTitle(x int, format string, args ...any) error {
	if l.root == nil {
		return nil
	}
	if x < 0 {
		x += l.width
		if x < 0 {
			return nil
		}
	}
	if x >= l.width {
		return nil
	}
	text := ansi.Truncate(fmt.Sprintf(format, args...), l.width-x, "")
	if text == "" {
		return nil
	}
	if err := l.root.Print(0, x, "%s", text); err != nil {
		return err
	}
	return l.root.Refresh()
}

// Reset moves the selection back to the first row without redrawing
func (l *List) Reset() {
	l.sel, l.offset = 0, 0
}

// Len returns the number of rows
func (l *List) Len() int { return len(l.rows) }

// Selected returns the index of the selected row
func (l *List) Selected() int { return l.sel }

// Offset returns the index of the first visible row
func (l *List) Offset() int { return l.offset }

// Width returns the outer width
func (l *List) Width() int { return l.width }

// Height returns the outer height
func (l *List) Height() int { return l.height }

// ContentWidth is the width rows are rendered for
func (l *List) ContentWidth() int {
	return max(l.width-2*(borderSize+innerSpace), 0)
}

// Line returns the text of row i
func (l *List) Line(i int) string {
	if i < 0 || i >= len(l.rows) {
		return ""
	}
	return l.rows[i].Line
}

// Rows returns the rows; callers must not modify them
func (l *List) Rows() []domain.Row { return l.rows }

// Current returns the selected row
func (l *List) Current() (domain.Row, bool) {
	if len(l.rows) == 0 {
		return domain.Row{}, false
	}
	return l.rows[l.sel], true
}

// Region returns the outer region, nil before Init
func (l *List) Region() display.Region { return l.root }

// ContentRect is the screen area rows are drawn in
func (l *List) ContentRect() display.Rect {
	return display.Rect{
		X: l.x + borderSize + innerSpace,
		Y: l.y + borderSize,
		W: l.ContentWidth(),
		H: l.VisibleRows(),
	}
}

// HandleKey applies a movement key count times. It reports false for keys
// that are not movement keys.
func (l *List) HandleKey(code, count int) (bool, error) {
	count = max(count, 1)
	rows := max(l.VisibleRows(), 1)
	visible := min(rows, len(l.rows)-l.offset)

	var err error
	switch code {
	case 'j', input.KeyDown:
		err = l.MoveTo(l.sel + count)
	case 'k', input.KeyUp:
		err = l.MoveTo(l.sel - count)
	case 'g', input.KeyHome:
		err = l.MoveTo(0)
	case 'G', input.KeyEnd:
		err = l.MoveTo(len(l.rows) - 1)
	case 'H':
		err = l.MoveTo(l.offset)
	case 'M':
		err = l.MoveTo(l.offset + (visible-1)/2)
	case 'L':
		err = l.MoveTo(l.offset + visible - 1)
	case input.KeyPgDn, 'f', input.Ctrl('f'):
		err = l.ScrollBy(rows * count)
	case input.KeyPgUp, 'b', input.Ctrl('b'):
		err = l.ScrollBy(-rows * count)
	case input.Ctrl('d'):
		err = l.ScrollBy(max(rows/2, 1) * count)
	case input.Ctrl('u'):
		err = l.ScrollBy(-max(rows/2, 1) * count)
	case input.Ctrl('e'):
		err = l.ScrollBy(count)
	case input.Ctrl('y'):
		err = l.ScrollBy(-count)
	default:
		return false, nil
	}
	return true, err
}
