package store

import (
	"strings"

	"subs/internal/domain"
)

const subsFields = `select
    subs.id, coalesce(subs.name, subs.ext_id),
    count(distinct case when videos.watched == 0 then videos.id end),
    count(distinct videos.id)
from subs
left outer join videos on subs.id == videos.sub`

const videoFields = `select
    videos.id, subs.type, videos.watched,
    coalesce(subs.name, subs.ext_id), videos.title,
    coalesce(videos.timestamp, 0)
from videos
join subs on videos.sub == subs.id`

// where builds a where clause from its conditions
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " where " + strings.Join(w.conds, " and ")
}

func addWatch(w *where, watch domain.WatchFilter) {
	switch watch {
	case domain.WatchOnlyWatched:
		w.add("videos.watched == 1")
	case domain.WatchOnlyUnwatched:
		w.add("videos.watched == 0")
	}
}

// addFilter adds the tag, type or subscription condition of f
func addFilter(w *where, f domain.Filter) {
	switch {
	case f.Untagged:
		w.add("(subs_tags.id is null and videos_tags.id is null)")
	case f.Tag != 0:
		w.add("(videos_tags.tag == ?1 or subs_tags.tag == ?1)", f.Tag)
	case f.Type != 0:
		w.add("subs.type == ?", int(f.Type))
	case f.Sub != 0:
		w.add("videos.sub == ?", f.Sub)
	}
}

func needsTagJoins(f domain.Filter) bool {
	return f.Untagged || f.Tag != 0
}

func buildSubsQuery(q domain.SubsQuery) (string, []any) {
	var b strings.Builder
	b.WriteString(subsFields)
	if needsTagJoins(q.Filter) {
		b.WriteString(`
left outer join subs_tags on subs.id == subs_tags.sub
left outer join videos_tags on videos.id == videos_tags.video`)
	}
	var w where
	f := q.Filter
	f.Sub = 0
	addFilter(&w, f)
	addWatch(&w, q.Watch)
	b.WriteString(w.String())
	b.WriteString(" group by subs.id order by ")
	switch q.Order {
	case domain.OrderID:
		b.WriteString("subs.id")
	case domain.OrderWatched:
		b.WriteString("count(distinct case when videos.watched then videos.id end)")
	case domain.OrderUnwatched:
		b.WriteString("count(distinct case when not videos.watched then videos.id end)")
	default:
		b.WriteString("coalesce(subs.name, subs.ext_id)")
	}
	if q.Desc {
		b.WriteString(" desc")
	}
	switch q.Order {
	case domain.OrderWatched, domain.OrderUnwatched:
		b.WriteString(", coalesce(subs.name, subs.ext_id)")
	}
	return b.String(), w.args
}

func buildVideosQuery(q domain.VideosQuery) (string, []any) {
	var b strings.Builder
	b.WriteString(videoFields)
	joins := needsTagJoins(q.Filter)
	if joins {
		b.WriteString(`
left outer join videos_tags on videos.id == videos_tags.video
left outer join subs_tags on videos.sub == subs_tags.sub`)
	}
	var w where
	addFilter(&w, q.Filter)
	addWatch(&w, q.Watch)
	b.WriteString(w.String())
	if joins {
		b.WriteString(" group by videos.id")
	}
	b.WriteString(" order by videos.timestamp, videos.id")
	return b.String(), w.args
}

const (
	countVideos    = `select count(*) from videos`
	countUnwatched = `select count(*) from videos where watched == 0`

	countUntagged = `select count(distinct videos.id) from videos
left outer join subs_tags on videos.sub == subs_tags.sub
left outer join videos_tags on videos.id == videos_tags.video
where subs_tags.id is null and videos_tags.id is null`

	countType = `select count(*) from videos
join subs on videos.sub == subs.id
where subs.type == ?`

	tagsWithCounts = `select
    tags.id, tags.name,
    count(distinct case when videos.watched == 0 then videos.id end),
    count(distinct videos.id)
from tags
left outer join subs_tags on tags.id == subs_tags.tag
left outer join videos_tags on tags.id == videos_tags.tag
left outer join videos on videos.sub == subs_tags.sub or videos.id == videos_tags.video
group by tags.id
order by tags.name`

	subscriptionTags = `select tags.id, tags.name, subs_tags.sub not null from tags
left outer join subs_tags on tags.id == subs_tags.tag and subs_tags.sub == ?
order by tags.name`
)
