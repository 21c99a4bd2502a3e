package display

import (
	"strings"
	"sync"
)

// Fake is an in-memory Presenter for tests
type Fake struct {
	mu     sync.Mutex
	width  int
	height int
	last   Frame
	frames int
	syncs  int

	// Fail, when set, is returned by Present and Sync
	Fail error
}

// NewFake creates a fake terminal of the given size
func NewFake(width, height int) *Fake {
	return &Fake{width: width, height: height}
}

func (f *Fake) Present(frame Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return f.Fail
	}
	f.last = frame
	f.frames++
	return nil
}

func (f *Fake) Sync() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail != nil {
		return f.Fail
	}
	f.syncs++
	return nil
}

func (f *Fake) Size() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

// SetSize changes the size reported to the next Screen.Fit
func (f *Fake) SetSize(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.width, f.height = width, height
}

// Frames returns how many frames were presented
func (f *Fake) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Syncs returns how many full repaints were requested
func (f *Fake) Syncs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncs
}

// Last returns the most recent frame
func (f *Fake) Last() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Line returns row y of the last frame as plain text
func (f *Fake) Line(y int) string {
	return f.Last().Line(y)
}

// AttrAt returns the attributes of a cell in the last frame
func (f *Fake) AttrAt(y, x int) Attr {
	frame := f.Last()
	if y < 0 || y >= len(frame.Cells) || x < 0 || x >= len(frame.Cells[y]) {
		return AttrNormal
	}
	return frame.Cells[y][x].Attr
}

// Text returns the last frame with trailing blanks trimmed from every line
func (f *Fake) Text() string {
	frame := f.Last()
	lines := make([]string, frame.Height)
	for y := range lines {
		lines[y] = strings.TrimRight(frame.Line(y), " ")
	}
	return strings.Join(lines, "\n")
}
