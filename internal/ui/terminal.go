// Package ui is the real terminal behind the display: a bubbletea program
// that paints frames, delivers keys and resizes, and gives the terminal to
// other programs on request.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"subs/internal/ui/display"
	"subs/internal/ui/input"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
)

type frameMsg struct{}

type syncMsg struct{}

// Terminal implements display.Presenter on top of a bubbletea program
type Terminal struct {
	program *tea.Program
	styles  Styles

	mu      sync.Mutex
	width   int
	height  int
	view    string
	pending []int

	keys    chan int
	resized chan struct{}
	wake    chan struct{}
	repaint chan tea.Msg
	done    chan struct{}
	err     error
}

// NewTerminal creates the terminal. The program starts with Start.
func NewTerminal(styles Styles, opts ...tea.ProgramOption) *Terminal {
	t := &Terminal{
		styles:  styles,
		width:   defaultWidth,
		height:  defaultHeight,
		keys:    make(chan int, 64),
		resized: make(chan struct{}, 1),
		wake:    make(chan struct{}, 1),
		repaint: make(chan tea.Msg, 1),
		done:    make(chan struct{}),
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		t.width, t.height = w, h
	}
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	t.program = tea.NewProgram(&model{t: t}, opts...)
	go t.pumpKeys()
	return t
}

// Start runs the program in the background
func (t *Terminal) Start() {
	go func() {
		_, err := t.program.Run()
		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		close(t.done)
	}()
	go t.pumpRepaints()
}

// Stop ends the program and restores the terminal
func (t *Terminal) Stop() error {
	t.program.Quit()
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Keys delivers key codes; it is closed when the program ends
func (t *Terminal) Keys() <-chan int { return t.keys }

// Resized fires when the terminal size changed or the process resumed
func (t *Terminal) Resized() <-chan struct{} { return t.resized }

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.width, t.height
}

func (t *Terminal) Present(f display.Frame) error {
	v := renderFrame(f, t.styles)
	t.mu.Lock()
	t.view = v
	t.mu.Unlock()
	t.requestRepaint(frameMsg{})
	return nil
}

func (t *Terminal) Sync() error {
	t.requestRepaint(syncMsg{})
	return nil
}

// requestRepaint coalesces repaints so the control loop never waits on
// the program
func (t *Terminal) requestRepaint(msg tea.Msg) {
	select {
	case t.repaint <- msg:
		return
	default:
	}
	if _, ok := msg.(syncMsg); ok {
		// make room so a sync is never lost to a plain repaint
		select {
		case <-t.repaint:
		default:
		}
		select {
		case t.repaint <- msg:
		default:
		}
	}
}

func (t *Terminal) pumpRepaints() {
	for {
		select {
		case msg := <-t.repaint:
			t.program.Send(msg)
		case <-t.done:
			return
		}
	}
}

// Suspend stops the process like Ctrl-Z in a shell. The program sends a
// resize notification when it resumes.
func (t *Terminal) Suspend() error {
	go t.program.Send(tea.SuspendMsg{})
	return nil
}

// Release gives the terminal to another program
func (t *Terminal) Release() error {
	if err := t.program.ReleaseTerminal(); err != nil {
		return fmt.Errorf("failed to release terminal: %w", err)
	}
	return nil
}

// Restore takes the terminal back after Release
func (t *Terminal) Restore() error {
	// Small delay to ensure the other program has fully exited
	time.Sleep(100 * time.Millisecond)
	if err := t.program.RestoreTerminal(); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return nil
}

func (t *Terminal) setSize(w, h int) {
	t.mu.Lock()
	t.width, t.height = w, h
	t.mu.Unlock()
	t.notifyResize()
}

func (t *Terminal) notifyResize() {
	select {
	case t.resized <- struct{}{}:
	default:
	}
}

func (t *Terminal) pushKeys(codes []int) {
	if len(codes) == 0 {
		return
	}
	t.mu.Lock()
	t.pending = append(t.pending, codes...)
	t.mu.Unlock()
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// pumpKeys moves keys from the program to the control loop without ever
// blocking the program
func (t *Terminal) pumpKeys() {
	defer close(t.keys)
	for {
		select {
		case <-t.wake:
		case <-t.done:
			return
		}
		for {
			t.mu.Lock()
			if len(t.pending) == 0 {
				t.mu.Unlock()
				break
			}
			c := t.pending[0]
			t.pending = t.pending[1:]
			t.mu.Unlock()
			select {
			case t.keys <- c:
			case <-t.done:
				return
			}
		}
	}
}

func (t *Terminal) render() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

type model struct {
	t *Terminal
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.t.pushKeys(input.FromTea(msg))
	case tea.WindowSizeMsg:
		m.t.setSize(msg.Width, msg.Height)
	case tea.ResumeMsg:
		m.t.notifyResize()
	case syncMsg:
		return m, tea.ClearScreen
	}
	return m, nil
}

func (m *model) View() string { return m.t.render() }

// renderFrame turns a frame into styled text, one run per attribute change
func renderFrame(f display.Frame, s Styles) string {
	var b strings.Builder
	var run strings.Builder
	for y, row := range f.Cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		cur := display.AttrNormal
		cursorCell := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st := s.For(cur)
			if cursorCell {
				st = st.Inherit(s.Cursor)
			}
			b.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for x, c := range row {
			if c.Width == 0 {
				continue
			}
			isCursor := f.CursorVisible && y == f.CursorY && x == f.CursorX
			if c.Attr != cur || isCursor || cursorCell {
				flush()
				cur, cursorCell = c.Attr, isCursor
			}
			run.WriteString(c.Text)
		}
		flush()
	}
	return b.String()
}
