package logic

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"subs/internal/domain"
	"subs/internal/store"
)

// MemoryVideo is a video held by MemoryStore
type MemoryVideo struct {
	ID        int64
	Sub       int64
	Type      domain.SubType
	ExtID     string
	Channel   string
	Title     string
	Timestamp int64
	Watched   bool
}

// MemoryStore is an in-memory implementation of Store. Subscriptions and
// sources are returned as set; videos are filtered by subscription, type and
// watched state.
type MemoryStore struct {
	mu      sync.RWMutex
	sources []domain.SourceRow
	subs    []domain.Row
	tags    map[int64][]domain.TagState
	videos  []MemoryVideo

	subsQueries  []domain.SubsQuery
	videoQueries []domain.VideosQuery

	// BeforeVideos, when set, runs before every Videos query outside the lock
	BeforeVideos func(q domain.VideosQuery)
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tags: make(map[int64][]domain.TagState)}
}

// SetSources replaces the source rows
func (s *MemoryStore) SetSources(rows []domain.SourceRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = rows
}

// SetSubscriptions replaces the subscription rows
func (s *MemoryStore) SetSubscriptions(rows []domain.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = rows
}

// SetTags replaces the tags of a subscription
func (s *MemoryStore) SetTags(sub int64, tags []domain.TagState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[sub] = tags
}

// AddVideo appends a video
func (s *MemoryStore) AddVideo(v MemoryVideo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos = append(s.videos, v)
}

// SubsQueries returns every subscription query received so far
func (s *MemoryStore) SubsQueries() []domain.SubsQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SubsQuery(nil), s.subsQueries...)
}

// VideoQueries returns every video query received so far
func (s *MemoryStore) VideoQueries() []domain.VideosQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.VideosQuery(nil), s.videoQueries...)
}

func (s *MemoryStore) TagCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.sources {
		if r.Kind == domain.SourceTag {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Sources(ctx context.Context, width int) ([]domain.SourceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SourceRow(nil), s.sources...), nil
}

func (s *MemoryStore) Subscriptions(ctx context.Context, q domain.SubsQuery, width int) ([]domain.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subsQueries = append(s.subsQueries, q)
	return append([]domain.Row(nil), s.subs...), nil
}

func (s *MemoryStore) Subscription(ctx context.Context, id int64, width int) (domain.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.subs {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.Row{}, fmt.Errorf("subscription %d: %w", id, sql.ErrNoRows)
}

func (s *MemoryStore) SubscriptionTags(ctx context.Context, sub int64) ([]domain.TagState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TagState(nil), s.tags[sub]...), nil
}

func (s *MemoryStore) SetSubscriptionTags(ctx context.Context, sub int64, tags []domain.TagState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[sub] = append([]domain.TagState(nil), tags...)
	return nil
}

func (v MemoryVideo) matches(q domain.VideosQuery) bool {
	f := q.Filter
	switch {
	case !f.Active:
		return false
	case f.Sub != 0 && v.Sub != f.Sub:
		return false
	case f.Type != 0 && v.Type != f.Type:
		return false
	case q.Watch == domain.WatchOnlyWatched && !v.Watched:
		return false
	case q.Watch == domain.WatchOnlyUnwatched && v.Watched:
		return false
	}
	return true
}

func (v MemoryVideo) row(width int) domain.Row {
	return domain.Row{
		ID:   v.ID,
		Line: store.VideoLine(width, v.Type, v.Watched, v.ID, v.Timestamp, v.Channel, v.Title),
	}
}

func (s *MemoryStore) Videos(ctx context.Context, q domain.VideosQuery, width int) ([]domain.Row, error) {
	if s.BeforeVideos != nil {
		s.BeforeVideos(q)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoQueries = append(s.videoQueries, q)
	var rows []domain.Row
	for _, v := range s.videos {
		if v.matches(q) {
			rows = append(rows, v.row(width))
		}
	}
	return rows, nil
}

func (s *MemoryStore) find(id int64) (*MemoryVideo, error) {
	for i := range s.videos {
		if s.videos[i].ID == id {
			return &s.videos[i], nil
		}
	}
	return nil, fmt.Errorf("video %d: %w", id, sql.ErrNoRows)
}

func (s *MemoryStore) Video(ctx context.Context, id int64, width int) (domain.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, err := s.find(id)
	if err != nil {
		return domain.Row{}, err
	}
	return v.row(width), nil
}

func (s *MemoryStore) ToggleWatched(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.find(id)
	if err != nil {
		return err
	}
	v.Watched = !v.Watched
	return nil
}

func (s *MemoryStore) VideoRef(ctx context.Context, id int64) (domain.VideoRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, err := s.find(id)
	if err != nil {
		return domain.VideoRef{}, err
	}
	return domain.VideoRef{ID: v.ID, Type: v.Type, ExtID: v.ExtID}, nil
}
