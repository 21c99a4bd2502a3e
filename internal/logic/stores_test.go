package logic

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subs/internal/domain"
	"subs/internal/store"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*store.SQLite)(nil)
)

func TestMemoryStoreFiltersVideos(t *testing.T) {
	s := NewMemoryStore()
	s.AddVideo(MemoryVideo{ID: 1, Sub: 10, Type: domain.SubYouTube, Title: "a"})
	s.AddVideo(MemoryVideo{ID: 2, Sub: 11, Type: domain.SubLBRY, Title: "b", Watched: true})
	s.AddVideo(MemoryVideo{ID: 3, Sub: 10, Type: domain.SubYouTube, Title: "c"})
	ctx := context.Background()

	rows, err := s.Videos(ctx, domain.VideosQuery{}, 0)
	require.NoError(t, err)
	assert.Empty(t, rows, "an inactive filter lists nothing")

	rows, err = s.Videos(ctx, domain.VideosQuery{Filter: domain.FilterSub(10)}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[1].ID)

	rows, err = s.Videos(ctx, domain.VideosQuery{Filter: domain.FilterAll(), Watch: domain.WatchOnlyWatched}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), rows[0].ID)

	assert.Len(t, s.VideoQueries(), 3)
}

func TestMemoryStoreToggleWatched(t *testing.T) {
	s := NewMemoryStore()
	s.AddVideo(MemoryVideo{ID: 1, Type: domain.SubYouTube})
	ctx := context.Background()

	require.NoError(t, s.ToggleWatched(ctx, 1))
	row, err := s.Video(ctx, 1, 0)
	require.NoError(t, err)
	assert.False(t, store.IsUnwatchedLine(row.Line))

	assert.ErrorIs(t, s.ToggleWatched(ctx, 5), sql.ErrNoRows)
}
