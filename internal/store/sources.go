package store

import (
	"context"
	"database/sql"
	"fmt"

	"subs/internal/domain"
)

// TagCount returns the number of tags
func (s *SQLite) TagCount(ctx context.Context) (int, error) {
	n, err := s.queryInt(ctx, "select count(*) from tags")
	if err != nil {
		return 0, fmt.Errorf("failed to count tags: %w", err)
	}
	return n, nil
}

type counts struct {
	unwatched, total int
}

func (s *SQLite) count(ctx context.Context, query string, args ...any) (counts, error) {
	total, err := s.queryInt(ctx, query, args...)
	if err != nil {
		return counts{}, err
	}
	suffix := " where watched == 0"
	if query != countVideos {
		suffix = " and videos.watched == 0"
	}
	unwatched, err := s.queryInt(ctx, query+suffix, args...)
	if err != nil {
		return counts{}, err
	}
	return counts{unwatched: unwatched, total: total}, nil
}

// Sources returns the source pane rows: everything, the tags section with
// the untagged entry, and the platform section
func (s *SQLite) Sources(ctx context.Context, width int) ([]domain.SourceRow, error) {
	all, err := s.count(ctx, countVideos)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	untagged, err := s.count(ctx, countUntagged)
	if err != nil {
		return nil, fmt.Errorf("failed to count untagged videos: %w", err)
	}

	rows := []domain.SourceRow{
		{Kind: domain.SourceAll, Row: domain.Row{Line: NameWithCounts(width, "", "all", all.unwatched, all.total)}},
		{Kind: domain.SourceHeader, Row: domain.Row{Line: "tags"}},
		{Kind: domain.SourceUntagged, Row: domain.Row{Line: NameWithCounts(width, "  ", "[untagged]", untagged.unwatched, untagged.total)}},
	}

	tags, err := queryAll(ctx, s, func(r *sql.Rows) (domain.SourceRow, error) {
		var id int64
		var name string
		var unwatched, total int
		if err := r.Scan(&id, &name, &unwatched, &total); err != nil {
			return domain.SourceRow{}, err
		}
		return domain.SourceRow{
			Kind: domain.SourceTag,
			Row:  domain.Row{ID: id, Line: NameWithCounts(width, "  ", name, unwatched, total)},
		}, nil
	}, tagsWithCounts)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	rows = append(rows, tags...)

	rows = append(rows, domain.SourceRow{Kind: domain.SourceHeader, Row: domain.Row{Line: "types"}})
	for _, t := range []domain.SubType{domain.SubLBRY, domain.SubYouTube} {
		c, err := s.count(ctx, countType, int(t))
		if err != nil {
			return nil, fmt.Errorf("failed to count %s videos: %w", t, err)
		}
		rows = append(rows, domain.SourceRow{
			Kind: domain.SourceType,
			Row:  domain.Row{ID: int64(t), Line: NameWithCounts(width, "  ", t.String(), c.unwatched, c.total)},
		})
	}
	return rows, nil
}
