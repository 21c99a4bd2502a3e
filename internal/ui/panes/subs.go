package panes

import (
	"context"
	"fmt"
	"strconv"
	"unicode"

	"subs/internal/domain"
	"subs/internal/logic"
	"subs/internal/ui/display"
	"subs/internal/ui/input"
	"subs/internal/ui/views"
)

// Subs lists the subscriptions matching the source filter
type Subs struct {
	base
	store  logic.SubsStore
	videos Filterable
	filter domain.Filter
	order  domain.Order
	desc   bool

	menu *views.Menu

	form     *views.Form
	formSub  int64
	formTags []domain.TagState
}

// NewSubs creates the subscriptions pane. Choosing a subscription filters
// videos by it.
func NewSubs(ctx context.Context, f display.Factory, host Host, store logic.SubsStore, videos Filterable) *Subs {
	s := &Subs{base: newBase(ctx, f, host), store: store, videos: videos}
	s.title = func() []string {
		return []string{" " + strconv.Itoa(s.list.Len()) + " ", s.orderTitle(), s.searchTitle()}
	}
	return s
}

func (s *Subs) orderTitle() string {
	c := s.order.Indicator()
	if c == 0 && !s.desc {
		return ""
	}
	if c == 0 {
		c = 'n'
	}
	r := rune(c)
	if s.desc {
		r = unicode.ToUpper(r)
	}
	return fmt.Sprintf(" O:%c ", r)
}

// Order returns the current ordering
func (s *Subs) Order() (domain.Order, bool) { return s.order, s.desc }

// MenuOpen reports whether the order menu is showing
func (s *Subs) MenuOpen() bool { return s.menu != nil }

// FormOpen reports whether the tag form is showing
func (s *Subs) FormOpen() bool { return s.form != nil }

func (s *Subs) SetFilter(f domain.Filter) error {
	s.filter = f
	s.list.Reset()
	return s.Reload()
}

func (s *Subs) SetGeometry(r display.Rect) error {
	s.rect = r
	if err := s.Reload(); err != nil {
		return err
	}
	switch {
	case s.menu != nil:
		cur := s.menu.Current()
		s.menu.Destroy()
		s.menu = nil
		return s.openMenu(cur)
	case s.form != nil:
		boxes := s.form.Boxes()
		s.form.Destroy()
		s.form = nil
		return s.openForm(boxes)
	}
	return nil
}

func (s *Subs) Reload() error {
	q := domain.SubsQuery{
		Filter: s.filter,
		Watch:  s.host.WatchFilter(),
		Order:  s.order,
		Desc:   s.desc,
	}
	rows, err := s.store.Subscriptions(s.ctx, q, s.contentWidth())
	if err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}
	return s.init(rows)
}

func (s *Subs) Enter() error {
	if s.menu != nil {
		return nil
	}
	if s.form != nil {
		s.host.SetCursorVisible(true)
		return nil
	}
	return s.base.Enter()
}

func (s *Subs) Leave() error {
	if s.menu != nil {
		return ErrBusy
	}
	return s.base.Leave()
}

func (s *Subs) Redraw() error {
	switch {
	case s.menu != nil:
		return s.menu.Redraw()
	case s.form != nil:
		return s.form.Redraw()
	}
	return s.base.Redraw()
}

func (s *Subs) Capturing() bool {
	return s.form != nil || s.base.Capturing()
}

func (s *Subs) Destroy() {
	if s.menu != nil {
		s.menu.Destroy()
		s.menu = nil
	}
	if s.form != nil {
		s.form.Destroy()
		s.form = nil
	}
	s.base.Destroy()
}

func (s *Subs) HandleKey(key, count int) (bool, error) {
	switch {
	case s.menu != nil:
		return s.menuKey(key)
	case s.form != nil:
		return true, s.formKey(key)
	case s.search.IsInputActive():
		return s.searchKey(key)
	}
	switch key {
	case input.KeyEnter, '\r':
		row, ok := s.list.Current()
		if !ok {
			return true, nil
		}
		if err := s.videos.SetFilter(domain.FilterSub(row.ID)); err != nil {
			return true, err
		}
		return true, s.host.RequestPaneSwitch(VideosID)
	case 'O':
		return true, s.openMenu(s.menuIndex())
	case 'R':
		s.desc = !s.desc
		return true, s.Reload()
	case 'r':
		return true, s.reloadItem()
	case 't':
		return true, s.showTags()
	}
	return s.commonKey(key, count)
}

func (s *Subs) reloadItem() error {
	row, ok := s.list.Current()
	if !ok {
		return nil
	}
	fresh, err := s.store.Subscription(s.ctx, row.ID, s.contentWidth())
	if err != nil {
		return fmt.Errorf("failed to reload subscription %d: %w", row.ID, err)
	}
	if err := s.list.SetCurrentLine("%s", fresh.Line); err != nil {
		return err
	}
	return s.drawTitle()
}

func (s *Subs) menuIndex() int {
	for i, o := range domain.Orders {
		if o == s.order {
			return i
		}
	}
	return 0
}

func (s *Subs) openMenu(cur int) error {
	items := make([]views.MenuItem, len(domain.Orders))
	for i, o := range domain.Orders {
		items[i] = views.MenuItem{Name: o.String(), Description: o.Description()}
	}
	title := "Order by:"
	if s.desc {
		title = "Order by (desc.):"
	}
	m, err := views.NewMenu(s.f, s.list.ContentRect(), title, items, cur)
	if err != nil {
		return err
	}
	s.menu = m
	return nil
}

func (s *Subs) closeMenu() {
	s.menu.Destroy()
	s.menu = nil
}

func (s *Subs) menuKey(key int) (bool, error) {
	switch key {
	case input.KeyEnter, '\r':
		s.order = domain.Orders[s.menu.Current()]
		s.closeMenu()
		return true, s.Reload()
	case input.KeyEsc, 'q':
		s.closeMenu()
		return true, s.base.Redraw()
	}
	return s.menu.HandleKey(key)
}

func (s *Subs) showTags() error {
	row, ok := s.list.Current()
	if !ok {
		return nil
	}
	tags, err := s.store.SubscriptionTags(s.ctx, row.ID)
	if err != nil {
		return fmt.Errorf("failed to load tags of subscription %d: %w", row.ID, err)
	}
	s.formSub, s.formTags = row.ID, tags
	boxes := make([]views.Checkbox, len(tags))
	for i, t := range tags {
		boxes[i] = views.Checkbox{Label: t.Name, Checked: t.Set}
	}
	return s.openForm(boxes)
}

func (s *Subs) openForm(boxes []views.Checkbox) error {
	f, err := views.NewForm(s.f, s.list.ContentRect(), "Tags:", boxes)
	if err != nil {
		return err
	}
	s.form = f
	s.host.SetCursorVisible(true)
	return nil
}

func (s *Subs) closeForm() error {
	s.form.Destroy()
	s.form = nil
	s.host.SetCursorVisible(false)
	return s.base.Redraw()
}

func (s *Subs) formKey(key int) error {
	switch key {
	case input.KeyEsc:
		return s.closeForm()
	case input.KeyEnter, '\r':
		tags := make([]domain.TagState, len(s.formTags))
		for i, b := range s.form.Boxes() {
			tags[i] = s.formTags[i]
			tags[i].Set = b.Checked
		}
		saveErr := s.store.SetSubscriptionTags(s.ctx, s.formSub, tags)
		if err := s.closeForm(); err != nil {
			return err
		}
		if saveErr != nil {
			return fmt.Errorf("failed to save tags of subscription %d: %w", s.formSub, saveErr)
		}
		return nil
	}
	return s.form.HandleKey(key)
}
