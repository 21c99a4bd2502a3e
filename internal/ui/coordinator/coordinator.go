// Package coordinator runs the control loop: it owns the panes, dispatches
// keys, applies task completions and keeps the layout in step with the
// terminal.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/x/ansi"

	"subs/internal/domain"
	"subs/internal/eventbus"
	"subs/internal/logging"
	"subs/internal/logic"
	"subs/internal/ui/display"
	"subs/internal/ui/input"
	"subs/internal/ui/panes"
	"subs/internal/ui/views"
	"subs/internal/worker"
)

// EventSource yields one event per call
type EventSource interface {
	Next() domain.Event
}

// Terminal is the part of the real terminal the control loop needs
type Terminal interface {
	// Release hands the terminal to another program; Restore takes it back
	Release() error
	Restore() error
	Suspend() error
	ShowHelp(km help.KeyMap) error
}

// Options wires a coordinator
type Options struct {
	Screen *display.Screen
	Events EventSource
	Bus    *eventbus.Bus
	Sink   *logging.Sink
	Store  logic.Store
	// Terminal may be nil in tests; suspend, shell mode and help are then
	// only logged
	Terminal Terminal
	Layout   LayoutFunc
	Keys     *KeyMap
	Opener   panes.Opener
	Hook     panes.KeyHook
}

// Coordinator is the control loop and the Host of every pane
type Coordinator struct {
	scr    *display.Screen
	events EventSource
	bus    *eventbus.Bus
	sink   *logging.Sink
	term   Terminal
	layout LayoutFunc
	keys   KeyMap
	worker *worker.Worker

	source  *panes.Source
	subs    *panes.Subs
	videos  *panes.Videos
	panes   [panes.Count]panes.Pane
	current panes.ID

	messages views.Messages
	msgRect  display.Rect

	resized bool
	watch   domain.WatchFilter
	count   int
	shell   int
}

// New creates the coordinator and its panes. Nothing is drawn before Run.
func New(ctx context.Context, opts Options) *Coordinator {
	c := &Coordinator{
		scr:     opts.Screen,
		events:  opts.Events,
		bus:     opts.Bus,
		sink:    opts.Sink,
		term:    opts.Terminal,
		layout:  opts.Layout,
		keys:    DefaultKeyMap(),
		current: panes.SourceID,
		resized: true,
		count:   -1,
	}
	if opts.Keys != nil {
		c.keys = *opts.Keys
	}
	c.worker = worker.New(func(err error) {
		if perr := c.bus.Publish(domain.ErrorEvent(err)); perr != nil {
			log.Printf("coordinator: cannot report task failure %v: %v", err, perr)
		}
	})

	c.videos = panes.NewVideos(ctx, c.scr, c, opts.Store)
	c.videos.SetScript(opts.Opener, opts.Hook)
	c.subs = panes.NewSubs(ctx, c.scr, c, opts.Store, c.videos)
	c.source = panes.NewSource(ctx, c.scr, c, opts.Store, c.subs, c.videos)
	c.panes = [panes.Count]panes.Pane{c.source, c.subs, c.videos}
	return c
}

// Current returns the active pane
func (c *Coordinator) Current() panes.ID { return c.current }

// Source returns the source pane
func (c *Coordinator) Source() *panes.Source { return c.source }

// Subs returns the subscriptions pane
func (c *Coordinator) Subs() *panes.Subs { return c.subs }

// Videos returns the videos pane
func (c *Coordinator) Videos() *panes.Videos { return c.videos }

// Run draws the panes and processes events until Quit or a fatal error.
// The returned error is nil only for Quit.
func (c *Coordinator) Run() error {
	c.worker.Start()
	if err := c.resize(); err != nil {
		return err
	}
	for id, p := range c.panes {
		if panes.ID(id) == c.current {
			continue
		}
		if err := p.Leave(); err != nil {
			return fmt.Errorf("failed to deactivate %s: %w", panes.ID(id), err)
		}
	}
	if err := c.panes[c.current].Enter(); err != nil {
		return fmt.Errorf("failed to enter %s: %w", c.current, err)
	}
	if err := c.drainLog(); err != nil {
		return err
	}

	for {
		ev := c.events.Next()
		switch ev.Type {
		case domain.EventQuit:
			return nil
		case domain.EventError:
			return ev.Err
		case domain.EventResize:
			c.resized = true
		case domain.EventKey:
			if err := c.handleKey(ev.Key); err != nil {
				return err
			}
		case domain.EventTaskDone:
			if err := ev.Done(); err != nil {
				return fmt.Errorf("task completion failed: %w", err)
			}
		}

		if err := c.resize(); err != nil {
			return err
		}
		if err := c.messages.Process(c.scr, c.msgRect); err != nil {
			return fmt.Errorf("failed to show message: %w", err)
		}
		if err := c.drainLog(); err != nil {
			return err
		}
	}
}

// Close destroys every region and stops the worker. It returns the task
// error that stopped the worker, if any.
func (c *Coordinator) Close() error {
	c.messages.Destroy()
	for _, p := range c.panes {
		p.Destroy()
	}
	err := c.worker.Stop()
	c.bus.Close()
	return err
}

// maxCount bounds the repeat count typed before a key
const maxCount = 1 << 20

func (c *Coordinator) handleKey(code int) error {
	if c.messages.Showing() {
		c.messages.Hide()
		return c.redrawAll()
	}

	p := c.panes[c.current]
	if input.IsDigit(code) && !p.Capturing() {
		c.count = min(max(c.count, 0)*10+code-'0', maxCount)
		return nil
	}
	count := c.count
	c.count = -1
	if count <= 0 {
		count = 1
	}

	handled, err := p.HandleKey(code, count)
	if errors.Is(err, panes.ErrBusy) {
		log.Printf("coordinator: %s: %v", c.current, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", c.current, err)
	}
	if handled {
		return nil
	}
	return c.globalKey(code)
}

func (c *Coordinator) globalKey(code int) error {
	k := c.keys
	switch {
	case matches(code, k.NextPane):
		return c.switchLogged((c.current + 1) % panes.Count)
	case matches(code, k.PrevPane):
		return c.switchLogged((c.current + panes.Count - 1) % panes.Count)
	case matches(code, k.Quit):
		return c.bus.Publish(domain.QuitEvent())
	case matches(code, k.Redraw):
		if err := c.redrawAll(); err != nil {
			return err
		}
		return c.scr.RedrawFromScratch()
	case matches(code, k.Suspend):
		if c.term == nil {
			log.Printf("coordinator: no terminal to suspend")
			return nil
		}
		return c.term.Suspend()
	case matches(code, k.ReloadAll):
		return c.reloadAll()
	case matches(code, k.Watched):
		return c.toggleWatch(domain.WatchOnlyWatched)
	case matches(code, k.NotWatched):
		return c.toggleWatch(domain.WatchOnlyUnwatched)
	case matches(code, k.Help):
		return c.showHelp()
	}
	return nil
}

// switchTo leaves the active pane and enters id. A refusal from Leave keeps
// the active pane.
func (c *Coordinator) switchTo(id panes.ID) error {
	if id == c.current {
		return nil
	}
	if err := c.panes[c.current].Leave(); err != nil {
		return err
	}
	if err := c.panes[id].Enter(); err != nil {
		return err
	}
	c.current = id
	return nil
}

func (c *Coordinator) switchLogged(id panes.ID) error {
	err := c.switchTo(id)
	if errors.Is(err, panes.ErrBusy) {
		log.Printf("coordinator: cannot leave %s: %v", c.current, err)
		return nil
	}
	return err
}

func (c *Coordinator) toggleWatch(f domain.WatchFilter) error {
	c.watch = c.watch.Toggle(f)
	if err := c.source.Redraw(); err != nil {
		return err
	}
	if err := c.subs.Reload(); err != nil {
		return err
	}
	return c.videos.Reload()
}

func (c *Coordinator) reloadAll() error {
	for _, p := range c.panes {
		if err := p.Reload(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) redrawAll() error {
	if err := c.scr.Clear(); err != nil {
		return err
	}
	for id, p := range c.panes {
		if err := p.Redraw(); err != nil {
			return fmt.Errorf("failed to redraw %s: %w", panes.ID(id), err)
		}
	}
	return nil
}

func (c *Coordinator) resize() error {
	if !c.resized {
		return nil
	}
	c.resized = false
	c.scr.Fit()
	if err := c.scr.Clear(); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if err := c.scr.Refresh(); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	if err := c.source.UpdateCount(); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	w, h := c.scr.Size()
	l, err := c.layout(h, w, c.source.TagCount())
	if err != nil {
		return fmt.Errorf("resize: failed to compute layout: %w", err)
	}
	c.msgRect = l.Message
	rects := [panes.Count]display.Rect{l.Source, l.Subs, l.Videos}
	for id, p := range c.panes {
		if err := p.SetGeometry(rects[id]); err != nil {
			return fmt.Errorf("resize: %s: %w", panes.ID(id), err)
		}
	}
	if err := c.messages.Resize(c.scr, c.msgRect); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}

// drainLog prints everything logged since the last iteration at the top of
// the screen. The next redraw of the panes below covers it.
func (c *Coordinator) drainLog() error {
	text := strings.TrimRight(c.sink.Take(), "\n")
	if text == "" {
		return nil
	}
	w, h := c.scr.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	rows := 0
	for _, l := range strings.Split(text, "\n") {
		rows += max(1, (ansi.StringWidth(l)+w-1)/w)
	}
	rows = min(rows, h)
	r, err := c.scr.NewRegion(rows, w, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to show log: %w", err)
	}
	defer r.Destroy()
	r.SetAttr(display.AttrError)
	if err := r.Print(0, 0, "%s", text); err != nil {
		return err
	}
	return r.Refresh()
}

func (c *Coordinator) showHelp() error {
	if c.term == nil {
		log.Printf("coordinator: no terminal for help")
		return nil
	}
	if err := c.term.ShowHelp(c.keys); err != nil {
		log.Printf("coordinator: help: %v", err)
	}
	if err := c.redrawAll(); err != nil {
		return err
	}
	return c.scr.RedrawFromScratch()
}

// RequestPaneSwitch implements panes.Host
func (c *Coordinator) RequestPaneSwitch(id panes.ID) error {
	return c.switchTo(id)
}

// PostMessage implements panes.Host
func (c *Coordinator) PostMessage(text string) {
	c.messages.Post(text)
}

// WatchFilter implements panes.Host
func (c *Coordinator) WatchFilter() domain.WatchFilter { return c.watch }

// SetCursorVisible implements panes.Host
func (c *Coordinator) SetCursorVisible(v bool) { c.scr.SetCursorVisible(v) }

// RequestResize implements panes.Host
func (c *Coordinator) RequestResize() { c.resized = true }

// Submit implements panes.Host. The work runs on the worker; its callback
// comes back through the loopback bus and runs in Run.
func (c *Coordinator) Submit(name string, work func() (domain.Callback, error)) error {
	return c.worker.Send(worker.Task{
		Name: name,
		Run: func() error {
			cb, err := work()
			if err != nil {
				return err
			}
			return c.bus.Publish(domain.TaskDoneEvent(cb))
		},
	})
}

// CurrentVideo returns the ID of the selected video
func (c *Coordinator) CurrentVideo() (int64, bool) {
	row, ok := c.videos.Current()
	return row.ID, ok
}

// VideoIDs returns the IDs of every loaded video in display order
func (c *Coordinator) VideoIDs() []int64 {
	rows := c.videos.Rows()
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

// ShellMode gives the terminal to fn and takes it back afterwards, even when
// fn fails. Nested calls run fn directly.
func (c *Coordinator) ShellMode(fn func() error) error {
	if c.shell > 0 || c.term == nil {
		c.shell++
		defer func() { c.shell-- }()
		return fn()
	}
	if err := c.term.Release(); err != nil {
		return fmt.Errorf("failed to release terminal: %w", err)
	}
	c.shell++
	fnErr := fn()
	c.shell--
	if err := c.term.Restore(); err != nil {
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	if err := c.redrawAll(); err != nil {
		return err
	}
	if err := c.scr.RedrawFromScratch(); err != nil {
		return err
	}
	return fnErr
}
