package store

import (
	"context"
	"database/sql"
	"fmt"

	"subs/internal/domain"
)

func scanVideo(width int) func(*sql.Rows) (domain.Row, error) {
	return func(r *sql.Rows) (domain.Row, error) {
		var (
			id, ts     int64
			typ        int
			watched    bool
			sub, title string
		)
		if err := r.Scan(&id, &typ, &watched, &sub, &title, &ts); err != nil {
			return domain.Row{}, err
		}
		return domain.Row{
			ID:   id,
			Line: VideoLine(width, domain.SubType(typ), watched, id, ts, sub, title),
		}, nil
	}
}

// Videos lists the videos matching q, oldest first. An inactive filter
// lists nothing.
func (s *SQLite) Videos(ctx context.Context, q domain.VideosQuery, width int) ([]domain.Row, error) {
	if !q.Filter.Active {
		return nil, nil
	}
	query, args := buildVideosQuery(q)
	rows, err := queryAll(ctx, s, scanVideo(width), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return rows, nil
}

// Video renders a single video row
func (s *SQLite) Video(ctx context.Context, id int64, width int) (domain.Row, error) {
	rows, err := queryAll(ctx, s, scanVideo(width), videoFields+" where videos.id == ?", id)
	if err != nil {
		return domain.Row{}, fmt.Errorf("failed to load video %d: %w", id, err)
	}
	if len(rows) == 0 {
		return domain.Row{}, fmt.Errorf("video %d: %w", id, sql.ErrNoRows)
	}
	return rows[0], nil
}

// ToggleWatched flips the watched flag of a video
func (s *SQLite) ToggleWatched(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, "update videos set watched = not watched where id == ?", id)
	if err != nil {
		return fmt.Errorf("failed to toggle video %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("video %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// VideoRef returns what is needed to open a video
func (s *SQLite) VideoRef(ctx context.Context, id int64) (domain.VideoRef, error) {
	ref := domain.VideoRef{ID: id}
	var typ int
	err := s.retry(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"select subs.type, videos.ext_id from videos join subs on videos.sub == subs.id where videos.id == ?",
			id).Scan(&typ, &ref.ExtID)
	})
	if err != nil {
		return domain.VideoRef{}, fmt.Errorf("failed to look up video %d: %w", id, err)
	}
	ref.Type = domain.SubType(typ)
	return ref, nil
}
