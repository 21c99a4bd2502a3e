package store

import (
	"context"
	"database/sql"
	"fmt"

	"subs/internal/domain"
)

func scanSub(width int) func(*sql.Rows) (domain.Row, error) {
	return func(r *sql.Rows) (domain.Row, error) {
		var id int64
		var name string
		var unwatched, total int
		if err := r.Scan(&id, &name, &unwatched, &total); err != nil {
			return domain.Row{}, err
		}
		return domain.Row{ID: id, Line: NameWithCounts(width, "", name, unwatched, total)}, nil
	}
}

// Subscriptions lists the subscriptions matching q
func (s *SQLite) Subscriptions(ctx context.Context, q domain.SubsQuery, width int) ([]domain.Row, error) {
	query, args := buildSubsQuery(q)
	rows, err := queryAll(ctx, s, scanSub(width), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return rows, nil
}

// Subscription renders a single subscription row
func (s *SQLite) Subscription(ctx context.Context, id int64, width int) (domain.Row, error) {
	rows, err := queryAll(ctx, s, scanSub(width),
		subsFields+" where subs.id == ? group by subs.id", id)
	if err != nil {
		return domain.Row{}, fmt.Errorf("failed to load subscription %d: %w", id, err)
	}
	if len(rows) == 0 {
		return domain.Row{}, fmt.Errorf("subscription %d: %w", id, sql.ErrNoRows)
	}
	return rows[0], nil
}

// SubscriptionTags lists every tag and whether sub carries it
func (s *SQLite) SubscriptionTags(ctx context.Context, sub int64) ([]domain.TagState, error) {
	tags, err := queryAll(ctx, s, func(r *sql.Rows) (domain.TagState, error) {
		var t domain.TagState
		err := r.Scan(&t.ID, &t.Name, &t.Set)
		return t, err
	}, subscriptionTags, sub)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags of subscription %d: %w", sub, err)
	}
	return tags, nil
}

// SetSubscriptionTags adds and removes tags of sub in one transaction
func (s *SQLite) SetSubscriptionTags(ctx context.Context, sub int64, tags []domain.TagState) error {
	err := s.retry(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		for _, t := range tags {
			query := "delete from subs_tags where sub == ? and tag == ?"
			if t.Set {
				query = "insert or ignore into subs_tags (sub, tag) values (?, ?)"
			}
			if _, err := tx.ExecContext(ctx, query, sub, t.ID); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("failed to save tags of subscription %d: %w", sub, err)
	}
	return nil
}
