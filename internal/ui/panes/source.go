package panes

import (
	"context"
	"fmt"

	"subs/internal/domain"
	"subs/internal/logic"
	"subs/internal/ui/display"
)

// Source lists the ways videos can be filtered: everything, by tag and by
// platform type
type Source struct {
	base
	store   logic.SourceStore
	targets []Filterable
	rows    []domain.SourceRow
	nTags   int
}

// NewSource creates the source pane. Choosing a row sets the filter on
// every target.
func NewSource(ctx context.Context, f display.Factory, host Host, store logic.SourceStore, targets ...Filterable) *Source {
	s := &Source{base: newBase(ctx, f, host), store: store, targets: targets}
	s.title = func() []string {
		return []string{watchTitle(s.host.WatchFilter()), s.searchTitle()}
	}
	return s
}

// UpdateCount refreshes the number of tags the layout is computed from
func (s *Source) UpdateCount() error {
	n, err := s.store.TagCount(s.ctx)
	if err != nil {
		return fmt.Errorf("failed to count tags: %w", err)
	}
	s.nTags = n
	return nil
}

// TagCount is the number of tags last seen
func (s *Source) TagCount() int { return s.nTags }

// SourceHeight is the height that shows every source row of nTags tags
func SourceHeight(nTags int) int {
	const fixedRows = 6 // all, tags, untagged, types, lbry, youtube
	return nTags + fixedRows + 2
}

// Height is SourceHeight for the tags last seen
func (s *Source) Height() int { return SourceHeight(s.nTags) }

func (s *Source) SetGeometry(r display.Rect) error {
	s.rect = r
	return s.Reload()
}

func (s *Source) Reload() error {
	rows, err := s.store.Sources(s.ctx, s.contentWidth())
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}
	n := 0
	for _, r := range rows {
		if r.Kind == domain.SourceTag {
			n++
		}
	}
	if n != s.nTags {
		s.nTags = n
		s.host.RequestResize()
	}
	s.rows = rows
	plain := make([]domain.Row, len(rows))
	for i, r := range rows {
		plain[i] = r.Row
	}
	return s.init(plain)
}

func (s *Source) HandleKey(key, count int) (bool, error) {
	if s.search.IsInputActive() {
		return s.searchKey(key)
	}
	if isEnter(key) {
		return true, s.choose()
	}
	return s.commonKey(key, count)
}

func (s *Source) choose() error {
	i := s.list.Selected()
	if i >= len(s.rows) {
		return nil
	}
	var f domain.Filter
	switch r := s.rows[i]; r.Kind {
	case domain.SourceHeader:
		return nil
	case domain.SourceAll:
		f = domain.FilterAll()
	case domain.SourceUntagged:
		f = domain.FilterUntagged()
	case domain.SourceTag:
		f = domain.FilterTag(r.ID)
	case domain.SourceType:
		f = domain.FilterType(domain.SubType(r.ID))
	}
	for _, t := range s.targets {
		if err := t.SetFilter(f); err != nil {
			return err
		}
	}
	return s.host.RequestPaneSwitch(VideosID)
}
