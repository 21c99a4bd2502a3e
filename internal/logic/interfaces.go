package logic

import (
	"context"

	"subs/internal/domain"
)

// SourceStore provides the rows of the source pane
type SourceStore interface {
	TagCount(ctx context.Context) (int, error)
	Sources(ctx context.Context, width int) ([]domain.SourceRow, error)
}

// SubsStore provides subscription rows and their tags
type SubsStore interface {
	Subscriptions(ctx context.Context, q domain.SubsQuery, width int) ([]domain.Row, error)
	Subscription(ctx context.Context, id int64, width int) (domain.Row, error)
	SubscriptionTags(ctx context.Context, sub int64) ([]domain.TagState, error)
	SetSubscriptionTags(ctx context.Context, sub int64, tags []domain.TagState) error
}

// VideoStore provides video rows and watched state
type VideoStore interface {
	Videos(ctx context.Context, q domain.VideosQuery, width int) ([]domain.Row, error)
	Video(ctx context.Context, id int64, width int) (domain.Row, error)
	ToggleWatched(ctx context.Context, id int64) error
	VideoRef(ctx context.Context, id int64) (domain.VideoRef, error)
}

// Store is everything the panes read and write
type Store interface {
	SourceStore
	SubsStore
	VideoStore
}
