package views

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"

	"subs/internal/ui/display"
	"subs/internal/ui/input"
)

// MenuItem is one choice in a menu
type MenuItem struct {
	Name        string
	Description string
}

// Menu is a single-choice menu drawn over another window's area: a title
// line followed by the items
type Menu struct {
	win, sub display.Region
	title    string
	items    []MenuItem
	cur      int
	offset   int
	nameW    int
}

// NewMenu creates a menu covering r with item cur selected
func NewMenu(f display.Factory, r display.Rect, title string, items []MenuItem, cur int) (*Menu, error) {
	if r.H < 2 || r.W < 1 {
		return nil, fmt.Errorf("%w: menu needs two rows", display.ErrGeometry)
	}
	win, err := f.NewRegion(r.H, r.W, r.Y, r.X)
	if err != nil {
		return nil, fmt.Errorf("failed to create menu window: %w", err)
	}
	sub, err := win.Derive(r.H-1, r.W, 1, 0)
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("failed to create menu window: %w", err)
	}
	m := &Menu{win: win, sub: sub, title: title, items: items}
	for _, it := range items {
		m.nameW = max(m.nameW, ansi.StringWidth(it.Name))
	}
	m.cur = min(max(cur, 0), max(len(items)-1, 0))
	return m, m.Redraw()
}

// Current returns the index of the selected item
func (m *Menu) Current() int { return m.cur }

func (m *Menu) rows() int { return m.sub.Geometry().H }

// Redraw draws the title and the visible items
func (m *Menu) Redraw() error {
	if err := m.win.Clear(); err != nil {
		return err
	}
	if err := m.win.Print(0, 0, "%s", ansi.Truncate(m.title, m.win.Geometry().W, "")); err != nil {
		return err
	}
	rows := m.rows()
	if m.cur < m.offset {
		m.offset = m.cur
	} else if m.cur >= m.offset+rows {
		m.offset = m.cur + 1 - rows
	}
	w := m.sub.Geometry().W
	for i := 0; i < rows && m.offset+i < len(m.items); i++ {
		it := m.items[m.offset+i]
		line := fmt.Sprintf("%-*s %s", m.nameW, it.Name, it.Description)
		if err := m.sub.Print(i, 0, "%s", ansi.Truncate(line, w, "")); err != nil {
			return err
		}
	}
	if len(m.items) > 0 {
		if err := m.sub.Move(m.cur-m.offset, 0); err != nil {
			return err
		}
		if err := m.sub.ChangeAttr(display.AttrReverse); err != nil {
			return err
		}
	}
	return m.win.Refresh()
}

// HandleKey moves the selection. It reports false for keys it does not use.
func (m *Menu) HandleKey(code int) (bool, error) {
	n := len(m.items)
	if n == 0 {
		return false, nil
	}
	switch code {
	case 'k', 'h', input.KeyUp, input.KeyLeft:
		m.cur = (m.cur - 1 + n) % n
	case 'j', 'l', input.KeyDown, input.KeyRight:
		m.cur = (m.cur + 1) % n
	case 'g', input.KeyHome:
		m.cur = 0
	case 'G', input.KeyEnd:
		m.cur = n - 1
	case 'b', input.KeyPgUp:
		m.cur = max(m.cur-m.rows(), 0)
	case 'f', input.KeyPgDn:
		m.cur = min(m.cur+m.rows(), n-1)
	default:
		return false, nil
	}
	return true, m.Redraw()
}

// Destroy releases the menu windows
func (m *Menu) Destroy() {
	m.win.Destroy()
}
