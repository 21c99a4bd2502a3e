package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"subs/internal/domain"
)

// NameWithCounts renders "prefix+title   unwatched/total" padded to width
// with the counts flush right. The title is cut when it does not fit.
func NameWithCounts(width int, prefix, title string, unwatched, total int) string {
	name := prefix + title
	counts := fmt.Sprintf(" %d/%d", unwatched, total)
	cw := ansi.StringWidth(counts)
	if width <= cw {
		return ansi.Truncate(name, max(width, 0), "")
	}
	name = ansi.Truncate(name, width-cw, "")
	pad := width - cw - ansi.StringWidth(name)
	return name + strings.Repeat(" ", pad) + counts
}

// VideoLine renders a video row: platform letter, 'N' when not watched, id,
// local date, subscription name and title
func VideoLine(width int, typ domain.SubType, watched bool, id int64, ts int64, sub, title string) string {
	mark := 'N'
	if watched {
		mark = ' '
	}
	date := time.Unix(ts, 0).Local().Format("2006-01-02")
	line := fmt.Sprintf("%c%c %d %s %s | %s", typ.Letter(), mark, id, date, sub, title)
	if width > 0 {
		line = ansi.Truncate(line, width, "")
	}
	return line
}

// IsUnwatchedLine reports whether a line produced by VideoLine is for an
// unwatched video
func IsUnwatchedLine(line string) bool {
	return len(line) > 1 && line[1] == 'N'
}
