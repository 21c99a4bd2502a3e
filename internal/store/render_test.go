package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"subs/internal/domain"
)

func TestNameWithCounts(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		prefix string
		title  string
		want   string
	}{
		{"padded", 12, "", "all", "all      1/2"},
		{"prefix", 12, "  ", "tag", "  tag    1/2"},
		{"cut title", 8, "", "longname", "long 1/2"},
		{"wide runes", 10, "", "日本語", "日本語 1/2"},
		{"no room for counts", 3, "", "abcdef", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameWithCounts(tt.width, tt.prefix, tt.title, 1, 2))
		})
	}
}

func TestVideoLine(t *testing.T) {
	ts := time.Date(2024, 3, 5, 12, 0, 0, 0, time.Local).Unix()

	assert.Equal(t, "YN 7 2024-03-05 chan | title", VideoLine(0, domain.SubYouTube, false, 7, ts, "chan", "title"))
	assert.Equal(t, "L  7 2024-03-05 chan | title", VideoLine(0, domain.SubLBRY, true, 7, ts, "chan", "title"))
	assert.Equal(t, "?N 7 2024", VideoLine(9, 0, false, 7, ts, "chan", "title"))

	assert.True(t, IsUnwatchedLine("YN 7"))
	assert.False(t, IsUnwatchedLine("Y  7"))
}
