// Package store is the SQLite data provider behind the panes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
create table if not exists subs (
    id integer primary key autoincrement not null,
    type unsigned integer not null,
    ext_id text not null,
    name text null,
    disabled boolean default(0),
    last_update integer not null default(0),
    last_video integer not null default(0),
    constraint unique_type_ext_id unique(type, ext_id)
);
create table if not exists videos (
    id integer primary key autoincrement not null,
    sub integer not null,
    ext_id text not null,
    title text not null,
    timestamp integer default(0),
    watched boolean not null default(0),
    foreign key(sub) references subs(id)
    constraint unique_sub_ext_id unique(sub, ext_id)
);
create unique index if not exists videos_sub_ext_id on videos (sub, ext_id);
create table if not exists tags (
    id integer primary key autoincrement not null,
    name text not null
);
create table if not exists subs_tags (
    id integer primary key autoincrement not null,
    sub integer not null,
    tag integer not null,
    foreign key(sub) references subs(id),
    foreign key(tag) references tags(id),
    constraint unique_subs_tags_sub_tag unique(sub, tag)
);
create table if not exists videos_tags (
    id integer primary key autoincrement not null,
    video integer not null,
    tag integer not null,
    foreign key(video) references videos(id),
    foreign key(tag) references tags(id)
    constraint unique_videos_tags_video_tag unique(video, tag)
);
create index if not exists subs_tags_sub on subs_tags (sub);
create index if not exists subs_tags_tag on subs_tags (tag);
create unique index if not exists subs_tags_sub_tag on subs_tags (sub, tag);
create index if not exists videos_tags_video on videos_tags (video);
create index if not exists videos_tags_tag on videos_tags (tag);
create unique index if not exists videos_tags_video_tag on videos_tags (video, tag);
`

// busyTimeout is how long SQLite itself waits on a lock before a query
// reports busy and retry takes over
var busyTimeout = 5 * time.Second

const (
	retryDelay    = 20 * time.Millisecond
	maxRetryDelay = 500 * time.Millisecond
)

// SQLite implements logic.Store over a database file
type SQLite struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and its schema
func Open(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &SQLite{db: db, path: path}
	err = s.retry(context.Background(), func() error {
		_, err := db.Exec(schema)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema in %s: %w", path, err)
	}
	return s, nil
}

// Path returns the database file path
func (s *SQLite) Path() string { return s.path }

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// isBusy reports whether err is a transient lock conflict
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	}
	return false
}

// retry runs fn until it succeeds, fails with a non-busy error or ctx is
// done. Busy errors are not logged: the log is drawn on screen.
func (s *SQLite) retry(ctx context.Context, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !isBusy(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database busy: %w", ctx.Err())
		case <-time.After(min(retryDelay*time.Duration(attempt), maxRetryDelay)):
		}
	}
}

// queryAll runs a query and scans every row with scan. A retried query
// starts over with an empty result.
func queryAll[T any](ctx context.Context, s *SQLite, scan func(*sql.Rows) (T, error), query string, args ...any) ([]T, error) {
	var out []T
	err := s.retry(ctx, func() error {
		out = out[:0]
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			v, err := scan(rows)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	return out, err
}

func (s *SQLite) queryInt(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := s.retry(ctx, func() error {
		return s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	})
	return n, err
}

func (s *SQLite) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := s.retry(ctx, func() error {
		var err error
		res, err = s.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}
