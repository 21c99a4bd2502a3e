package store

import (
	"context"
	"fmt"
	"time"

	"subs/internal/domain"
)

// AddTag creates a tag
func (s *SQLite) AddTag(ctx context.Context, name string) (int64, error) {
	res, err := s.exec(ctx, "insert into tags (name) values (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to add tag %q: %w", name, err)
	}
	return res.LastInsertId()
}

// AddSubscription creates a subscription
func (s *SQLite) AddSubscription(ctx context.Context, typ domain.SubType, extID, name string) (int64, error) {
	res, err := s.exec(ctx,
		"insert into subs (type, ext_id, name) values (?, ?, ?)", int(typ), extID, name)
	if err != nil {
		return 0, fmt.Errorf("failed to add subscription %q: %w", extID, err)
	}
	return res.LastInsertId()
}

// AddVideo creates a video of sub
func (s *SQLite) AddVideo(ctx context.Context, sub int64, extID, title string, published time.Time, watched bool) (int64, error) {
	res, err := s.exec(ctx,
		"insert into videos (sub, ext_id, title, timestamp, watched) values (?, ?, ?, ?, ?)",
		sub, extID, title, published.Unix(), watched)
	if err != nil {
		return 0, fmt.Errorf("failed to add video %q: %w", extID, err)
	}
	return res.LastInsertId()
}

// TagSubscription adds tag to sub
func (s *SQLite) TagSubscription(ctx context.Context, sub, tag int64) error {
	return s.SetSubscriptionTags(ctx, sub, []domain.TagState{{ID: tag, Set: true}})
}

// TagVideo adds tag to a single video
func (s *SQLite) TagVideo(ctx context.Context, video, tag int64) error {
	_, err := s.exec(ctx,
		"insert or ignore into videos_tags (video, tag) values (?, ?)", video, tag)
	if err != nil {
		return fmt.Errorf("failed to tag video %d: %w", video, err)
	}
	return nil
}
