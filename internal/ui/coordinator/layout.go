package coordinator

import (
	"cmp"
	"fmt"

	"subs/internal/config"
	"subs/internal/ui/display"
	"subs/internal/ui/panes"
)

// Layout is the position of every pane and of the message window
type Layout struct {
	Message display.Rect
	Source  display.Rect
	Subs    display.Rect
	Videos  display.Rect
}

// LayoutFunc computes a Layout for a terminal of lines x cols with nTags tags
type LayoutFunc func(lines, cols, nTags int) (Layout, error)

const (
	minSourceWidth = 8
	minSubsHeight  = 2
)

// FixedLayout puts sources in a column on the left sized to its rows,
// subscriptions below it and videos on the right. The message window is
// centered. Zero sizes mean the defaults.
func FixedLayout(cfg config.Layout) LayoutFunc {
	cfg.SourceWidth = cmp.Or(cfg.SourceWidth, config.DefaultSourceWidth)
	cfg.MessageWidth = cmp.Or(cfg.MessageWidth, config.DefaultMessageWidth)
	cfg.MessageHeight = cmp.Or(cfg.MessageHeight, config.DefaultMessageHeight)
	return func(lines, cols, nTags int) (Layout, error) {
		sw := min(cfg.SourceWidth, cols/2)
		if sw < minSourceWidth || lines < 2+minSubsHeight || cols-sw < 4 {
			return Layout{}, fmt.Errorf("%w: terminal too small (%dx%d)", display.ErrGeometry, cols, lines)
		}
		sh := min(panes.SourceHeight(nTags), lines-minSubsHeight)
		mw := max(min(cfg.MessageWidth, cols), 4)
		mh := max(min(cfg.MessageHeight, lines), 3)
		return Layout{
			Message: display.Rect{X: (cols - mw) / 2, Y: (lines - mh) / 2, W: mw, H: mh},
			Source:  display.Rect{X: 0, Y: 0, W: sw, H: sh},
			Subs:    display.Rect{X: 0, Y: sh, W: sw, H: lines - sh},
			Videos:  display.Rect{X: sw, Y: 0, W: cols - sw, H: lines},
		}, nil
	}
}
