package domain

import "strings"

// SubType identifies the platform a subscription is fetched from
type SubType int

const (
	SubLBRY    SubType = 1
	SubYouTube SubType = 2
)

// Letter returns the one-character marker used in video rows
func (t SubType) Letter() byte {
	switch t {
	case SubLBRY:
		return 'L'
	case SubYouTube:
		return 'Y'
	default:
		return '?'
	}
}

// String returns the lower-case platform name
func (t SubType) String() string {
	switch t {
	case SubLBRY:
		return "lbry"
	case SubYouTube:
		return "youtube"
	default:
		return "unknown"
	}
}

// ParseSubType maps a platform name back to its type
func ParseSubType(s string) (SubType, bool) {
	switch strings.ToLower(s) {
	case "lbry":
		return SubLBRY, true
	case "youtube", "yt":
		return SubYouTube, true
	}
	return 0, false
}

// Row is one rendered list entry
type Row struct {
	ID   int64
	Line string
}

// SourceKind tells the source pane what a row stands for
type SourceKind int

const (
	SourceAll SourceKind = iota
	SourceHeader
	SourceUntagged
	SourceTag
	SourceType
)

// SourceRow is a row of the source pane
type SourceRow struct {
	Row
	Kind SourceKind
}

// WatchFilter is the global watched/not-watched restriction; the two are mutually exclusive
type WatchFilter int

const (
	WatchAny WatchFilter = iota
	WatchOnlyWatched
	WatchOnlyUnwatched
)

// Toggle flips between f and none, replacing any other active filter
func (w WatchFilter) Toggle(f WatchFilter) WatchFilter {
	if w == f {
		return WatchAny
	}
	return f
}

// Filter selects the videos (and the subscriptions that own them) a pane lists.
// At most one of Untagged, Tag, Type and Sub is set.
type Filter struct {
	Active   bool
	Untagged bool
	Tag      int64
	Type     SubType
	Sub      int64
}

// FilterAll lists everything
func FilterAll() Filter { return Filter{Active: true} }

// FilterUntagged lists videos with neither a subscription nor a video tag
func FilterUntagged() Filter { return Filter{Active: true, Untagged: true} }

// FilterTag lists videos tagged directly or through their subscription
func FilterTag(id int64) Filter { return Filter{Active: true, Tag: id} }

// FilterType lists videos of one platform
func FilterType(t SubType) Filter { return Filter{Active: true, Type: t} }

// FilterSub lists the videos of one subscription
func FilterSub(id int64) Filter { return Filter{Active: true, Sub: id} }

// Order is the subscription list ordering
type Order int

const (
	OrderName Order = iota
	OrderID
	OrderWatched
	OrderUnwatched
)

// Orders lists every ordering in menu order
var Orders = []Order{OrderID, OrderName, OrderWatched, OrderUnwatched}

// String returns the menu label
func (o Order) String() string {
	switch o {
	case OrderID:
		return "id"
	case OrderWatched:
		return "watched"
	case OrderUnwatched:
		return "unwatched"
	default:
		return "name"
	}
}

// Description returns the menu description
func (o Order) Description() string {
	switch o {
	case OrderID:
		return "database ID"
	case OrderWatched:
		return "watched videos"
	case OrderUnwatched:
		return "unwatched videos"
	default:
		return "subscription name"
	}
}

// Indicator returns the border marker, 0 for the default ordering
func (o Order) Indicator() byte {
	switch o {
	case OrderID:
		return 'i'
	case OrderWatched:
		return 'w'
	case OrderUnwatched:
		return 'u'
	default:
		return 0
	}
}

// SubsQuery describes a subscription list request
type SubsQuery struct {
	Filter Filter
	Watch  WatchFilter
	Order  Order
	Desc   bool
}

// VideosQuery describes a video list request
type VideosQuery struct {
	Filter Filter
	Watch  WatchFilter
}

// TagState is a tag and whether a subscription carries it
type TagState struct {
	ID   int64
	Name string
	Set  bool
}

// VideoRef is what an opener needs to locate a video
type VideoRef struct {
	ID    int64
	Type  SubType
	ExtID string
}
