package panes

import (
	"context"
	"fmt"
	"log"

	"subs/internal/domain"
	"subs/internal/logic"
	"subs/internal/store"
	"subs/internal/ui/display"
)

// Opener opens a video outside the terminal
type Opener interface {
	Open(ref domain.VideoRef) error
}

// KeyHook gets keys the videos pane does not handle itself
type KeyHook interface {
	VideosInput(key int) (bool, error)
}

// Videos lists the videos matching the current filter. Reloads run on the
// task worker; only the completion of the latest request is applied.
type Videos struct {
	base
	store  logic.VideoStore
	filter domain.Filter
	opener Opener
	hook   KeyHook

	gen     uint64
	applied uint64
}

// NewVideos creates the videos pane. It stays empty until a filter is set.
func NewVideos(ctx context.Context, f display.Factory, host Host, store logic.VideoStore) *Videos {
	v := &Videos{base: newBase(ctx, f, host), store: store}
	v.title = v.pageTitle
	return v
}

// SetScript installs the opener and key hook, either may be nil
func (v *Videos) SetScript(o Opener, h KeyHook) {
	v.opener, v.hook = o, h
}

func (v *Videos) pageTitle() []string {
	n := v.list.Len()
	if n == 0 {
		return nil
	}
	h := max(v.list.VisibleRows(), 1)
	return []string{fmt.Sprintf(" %d %d/%d ", n, v.list.Selected()/h, n/h)}
}

// Filter returns the active filter
func (v *Videos) Filter() domain.Filter { return v.filter }

// Generation returns the number of the latest reload request
func (v *Videos) Generation() uint64 { return v.gen }

// Applied returns the number of the reload whose rows are shown
func (v *Videos) Applied() uint64 { return v.applied }

// Current returns the selected row
func (v *Videos) Current() (domain.Row, bool) { return v.list.Current() }

// Rows returns every loaded row; callers must not modify them
func (v *Videos) Rows() []domain.Row { return v.list.Rows() }

func (v *Videos) SetFilter(f domain.Filter) error {
	v.filter = f
	v.list.Reset()
	return v.Reload()
}

// SetGeometry lays out the rows already loaded, then reloads them for the
// new width
func (v *Videos) SetGeometry(r display.Rect) error {
	v.rect = r
	if err := v.init(v.list.Rows()); err != nil {
		return err
	}
	return v.Reload()
}

// Reload requests the rows for the current filter from the worker
func (v *Videos) Reload() error {
	v.gen++
	if !v.filter.Active {
		v.applied = v.gen
		return v.init(nil)
	}
	gen := v.gen
	q := domain.VideosQuery{Filter: v.filter, Watch: v.host.WatchFilter()}
	width := v.contentWidth()
	return v.host.Submit(fmt.Sprintf("videos#%d", gen), func() (domain.Callback, error) {
		rows, err := v.store.Videos(v.ctx, q, width)
		if err != nil {
			return nil, fmt.Errorf("failed to load videos: %w", err)
		}
		return func() error { return v.apply(gen, rows) }, nil
	})
}

// apply runs on the main thread
func (v *Videos) apply(gen uint64, rows []domain.Row) error {
	if gen != v.gen {
		log.Printf("videos: dropping stale reload %d (latest %d)", gen, v.gen)
		return nil
	}
	v.applied = gen
	return v.init(rows)
}

// HandleKey has no search: n is taken by next unwatched
func (v *Videos) HandleKey(key, count int) (bool, error) {
	switch key {
	case 'N':
		return true, v.toggleWatched()
	case 'n':
		return true, v.nextUnwatched()
	case 'o':
		return true, v.open()
	case 'r':
		return true, v.reloadItem()
	}
	handled, err := v.list.HandleKey(key, count)
	if err != nil {
		return true, err
	}
	if handled {
		return true, v.drawTitle()
	}
	if v.hook == nil {
		return false, nil
	}
	return v.hook.VideosInput(key)
}

func (v *Videos) reloadItem() error {
	row, ok := v.list.Current()
	if !ok {
		return nil
	}
	fresh, err := v.store.Video(v.ctx, row.ID, v.contentWidth())
	if err != nil {
		return fmt.Errorf("failed to reload video %d: %w", row.ID, err)
	}
	return v.list.SetCurrentLine("%s", fresh.Line)
}

func (v *Videos) toggleWatched() error {
	row, ok := v.list.Current()
	if !ok {
		return nil
	}
	if err := v.store.ToggleWatched(v.ctx, row.ID); err != nil {
		return fmt.Errorf("failed to toggle video %d: %w", row.ID, err)
	}
	if err := v.reloadItem(); err != nil {
		return err
	}
	if err := v.list.MoveTo(v.list.Selected() + 1); err != nil {
		return err
	}
	return v.drawTitle()
}

func (v *Videos) nextUnwatched() error {
	n := v.list.Len()
	if n == 0 {
		return nil
	}
	i := v.list.Selected()
	if store.IsUnwatchedLine(v.list.Line(i)) {
		i++
	}
	for ; i < n; i++ {
		if store.IsUnwatchedLine(v.list.Line(i)) {
			if err := v.list.MoveTo(i); err != nil {
				return err
			}
			return v.drawTitle()
		}
	}
	return nil
}

func (v *Videos) open() error {
	row, ok := v.list.Current()
	if !ok {
		return nil
	}
	if v.opener == nil {
		log.Printf("videos: no opener defined")
		return nil
	}
	ref, err := v.store.VideoRef(v.ctx, row.ID)
	if err != nil {
		return fmt.Errorf("failed to look up video %d: %w", row.ID, err)
	}
	return v.opener.Open(ref)
}
