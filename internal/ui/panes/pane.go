// Package panes holds the three navigable panes: sources, subscriptions and
// videos. Panes talk back to the control loop only through Host.
package panes

import (
	"context"
	"errors"

	"github.com/charmbracelet/x/ansi"

	"subs/internal/domain"
	"subs/internal/ui/display"
	"subs/internal/ui/input"
	"subs/internal/ui/list"
)

// ErrBusy is returned by Leave while a pane keeps a modal open
var ErrBusy = errors.New("pane busy")

// ID addresses a pane inside the coordinator
type ID int

const (
	SourceID ID = iota
	SubsID
	VideosID

	Count = 3
)

func (id ID) String() string {
	switch id {
	case SourceID:
		return "source"
	case SubsID:
		return "subscriptions"
	case VideosID:
		return "videos"
	default:
		return "unknown"
	}
}

// Host is what a pane may ask of the control loop
type Host interface {
	RequestPaneSwitch(id ID) error
	PostMessage(text string)
	WatchFilter() domain.WatchFilter
	// Submit runs work on the task worker. The callback it returns is
	// applied on the main thread.
	Submit(name string, work func() (domain.Callback, error)) error
	SetCursorVisible(visible bool)
	// RequestResize recomputes the layout before the next event
	RequestResize()
}

// Pane is one navigable unit of the screen
type Pane interface {
	Enter() error
	Leave() error
	Redraw() error
	// HandleKey reports false for keys the pane does not use
	HandleKey(key, count int) (bool, error)
	// Capturing reports whether digits should reach the pane as text
	Capturing() bool
	SetGeometry(r display.Rect) error
	Reload() error
	Destroy()
}

// Filterable receives the filter chosen in another pane and reloads
type Filterable interface {
	SetFilter(f domain.Filter) error
}

// base is the list, search and geometry every pane shares
type base struct {
	ctx    context.Context
	f      display.Factory
	host   Host
	list   *list.List
	search list.Search
	rect   display.Rect
	title  func() []string
}

func newBase(ctx context.Context, f display.Factory, host Host) base {
	l := list.New()
	return base{ctx: ctx, f: f, host: host, list: l}
}

func (b *base) contentWidth() int {
	return max(b.rect.W-4, 0)
}

// init replaces the rows and draws the border title
func (b *base) init(rows []domain.Row) error {
	if err := b.list.Init(b.f, rows, b.rect.X, b.rect.Y, b.rect.W, b.rect.H); err != nil {
		return err
	}
	return b.drawTitle()
}

// drawTitle redraws the border and writes the title parts right to left,
// leaving the corner alone
func (b *base) drawTitle() error {
	if err := b.list.Box(); err != nil {
		return err
	}
	if b.title == nil {
		return b.refresh()
	}
	x := -1
	for _, part := range b.title() {
		if part == "" {
			continue
		}
		x -= ansi.StringWidth(part)
		if err := b.list.WriteTitle(x, "%s", part); err != nil {
			return err
		}
	}
	return b.refresh()
}

func (b *base) refresh() error {
	if r := b.list.Region(); r != nil {
		return r.Refresh()
	}
	return nil
}

func (b *base) searchTitle() string {
	if !b.search.IsActive() {
		return ""
	}
	return " /" + b.search.Query() + " "
}

func watchTitle(w domain.WatchFilter) string {
	switch w {
	case domain.WatchOnlyWatched:
		return " w "
	case domain.WatchOnlyUnwatched:
		return " W "
	}
	return ""
}

func (b *base) Enter() error {
	b.host.SetCursorVisible(false)
	return b.list.SetActive(true)
}

func (b *base) Leave() error {
	return b.list.SetActive(false)
}

func (b *base) Redraw() error {
	if err := b.list.Redraw(); err != nil {
		return err
	}
	return b.drawTitle()
}

func (b *base) Capturing() bool {
	return b.search.IsInputActive()
}

func (b *base) Destroy() {
	b.list.Destroy()
}

// List exposes the pane's list for inspection
func (b *base) List() *list.List { return b.list }

// searchKey feeds a key to the search input
func (b *base) searchKey(code int) (bool, error) {
	handled, err := b.search.HandleKey(b.list, code)
	if err != nil || !handled {
		return handled, err
	}
	return true, b.drawTitle()
}

// commonKey handles the search keys and list movement
func (b *base) commonKey(code, count int) (bool, error) {
	switch code {
	case '/':
		b.search.Reset()
		return true, b.drawTitle()
	case 'n':
		if b.search.IsEmpty() {
			return true, nil
		}
		for range max(count, 1) {
			found, err := b.search.NextMatch(b.list, b.list.Selected())
			if err != nil {
				return true, err
			}
			if !found {
				break
			}
		}
		return true, nil
	}
	handled, err := b.list.HandleKey(code, count)
	if err != nil || !handled {
		return handled, err
	}
	return true, b.drawTitle()
}

// isEnter accepts both line endings a terminal may send
func isEnter(code int) bool {
	return code == input.KeyEnter || code == '\r'
}
