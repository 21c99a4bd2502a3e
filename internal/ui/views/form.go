package views

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"

	"subs/internal/ui/display"
	"subs/internal/ui/input"
)

// Checkbox is one line of a Form
type Checkbox struct {
	Label   string
	Checked bool
}

// Form is a list of checkboxes under a title line. Space toggles the
// focused box; Tab and the arrows move between boxes.
type Form struct {
	win, sub display.Region
	title    string
	boxes    []Checkbox
	cur      int
	offset   int
}

// NewForm creates a form covering r
func NewForm(f display.Factory, r display.Rect, title string, boxes []Checkbox) (*Form, error) {
	if r.H < 2 || r.W < 4 {
		return nil, fmt.Errorf("%w: form needs two rows", display.ErrGeometry)
	}
	win, err := f.NewRegion(r.H, r.W, r.Y, r.X)
	if err != nil {
		return nil, fmt.Errorf("failed to create form window: %w", err)
	}
	sub, err := win.Derive(r.H-1, r.W, 1, 0)
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to create form window: %w", err)
	}
	fm := &Form{win: win, sub: sub, title: title, boxes: boxes}
	return fm, fm.Redraw()
}

// Boxes returns the checkboxes in their current state
func (f *Form) Boxes() []Checkbox { return f.boxes }

// Current returns the index of the focused box
func (f *Form) Current() int { return f.cur }

// Redraw draws the form and leaves the cursor on the focused box
func (f *Form) Redraw() error {
	if err := f.win.Clear(); err != nil {
		return err
	}
	w := f.win.Geometry().W
	if err := f.win.Print(0, 0, "%s", ansi.Truncate(f.title, w, "")); err != nil {
		return err
	}
	rows := f.sub.Geometry().H
	if f.cur < f.offset {
		f.offset = f.cur
	} else if f.cur >= f.offset+rows {
		f.offset = f.cur + 1 - rows
	}
	for i := 0; i < rows && f.offset+i < len(f.boxes); i++ {
		b := f.boxes[f.offset+i]
		mark := ' '
		if b.Checked {
			mark = 'x'
		}
		line := fmt.Sprintf("[%c] %s", mark, b.Label)
		if err := f.sub.Print(i, 0, "%s", ansi.Truncate(line, w, "")); err != nil {
			return err
		}
	}
	if len(f.boxes) > 0 {
		if err := f.win.Move(1+f.cur-f.offset, 1); err != nil {
			return err
		}
	}
	return f.win.Refresh()
}

// HandleKey edits the form. Every key is consumed.
func (f *Form) HandleKey(code int) error {
	n := len(f.boxes)
	if n == 0 {
		return nil
	}
	switch code {
	case ' ':
		f.boxes[f.cur].Checked = !f.boxes[f.cur].Checked
	case input.KeyTab, input.KeyDown, 'j':
		f.cur = (f.cur + 1) % n
	case input.KeyBackTab, input.KeyUp, 'k':
		f.cur = (f.cur - 1 + n) % n
	default:
		return nil
	}
	return f.Redraw()
}

// Destroy releases the form windows
func (f *Form) Destroy() {
	f.win.Destroy()
}
