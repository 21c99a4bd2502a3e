package views

import (
	"fmt"

	"subs/internal/ui/display"
)

const (
	borderSize = 1
	innerSpace = 1
)

const messageTitle = " message "

// Messages is the queue behind the message overlay. One message is shown at
// a time; the next one appears after the current one is hidden.
type Messages struct {
	queue   []string
	current string
	showing bool
	rect    display.Rect

	win display.Region
	sub display.Region
}

// Post queues a message
func (m *Messages) Post(text string) {
	m.queue = append(m.queue, text)
}

// Showing reports whether a message is on screen
func (m *Messages) Showing() bool { return m.showing }

// Pending returns the number of queued messages not yet shown
func (m *Messages) Pending() int { return len(m.queue) }

// Current returns the message on screen
func (m *Messages) Current() string { return m.current }

// Process shows the next queued message in r when none is showing
func (m *Messages) Process(f display.Factory, r display.Rect) error {
	if m.showing || len(m.queue) == 0 {
		return nil
	}
	m.current, m.queue = m.queue[0], m.queue[1:]
	m.showing = true
	return m.show(f, r)
}

func (m *Messages) show(f display.Factory, r display.Rect) error {
	m.rect = r
	win, err := f.NewRegion(r.H, r.W, r.Y, r.X)
	if err != nil {
		return fmt.Errorf("failed to create message window: %w", err)
	}
	sh := r.H - 2*borderSize
	sw := r.W - 2*(borderSize+innerSpace)
	var sub display.Region
	if sh > 0 && sw > 0 {
		sub, err = win.Derive(sh, sw, borderSize, borderSize+innerSpace)
		if err != nil {
			win.Destroy()
			return fmt.Errorf("failed to create message window: %w", err)
		}
	}
	m.win, m.sub = win, sub

	if err := win.Box(); err != nil {
		return err
	}
	if x := r.W - len(messageTitle) - 1; x >= 0 {
		if err := win.Print(0, x, messageTitle); err != nil {
			return err
		}
	}
	if sub != nil {
		if err := sub.Print(0, 0, "%s", m.current); err != nil {
			return err
		}
	}
	return win.Refresh()
}

// Hide removes the message on screen. The caller redraws what was beneath.
func (m *Messages) Hide() {
	if m.win != nil {
		m.win.Destroy()
	}
	m.win, m.sub = nil, nil
	m.current = ""
	m.showing = false
}

// Resize redraws the message on screen at r
func (m *Messages) Resize(f display.Factory, r display.Rect) error {
	if !m.showing {
		return nil
	}
	if m.win != nil {
		m.win.Destroy()
	}
	return m.show(f, r)
}

// Destroy drops the queue and the window
func (m *Messages) Destroy() {
	m.Hide()
	m.queue = nil
}
