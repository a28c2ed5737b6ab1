// Package queue assembles the daily review queue: which items are due,
// which are new, what was already completed today, and how much of it fits
// in the daily budget.
package queue

import (
	"cmp"
	"slices"
	"time"

	"github.com/rcliao/spaced-review/internal/model"
)

// Input is everything one assembly pass reads.
type Input struct {
	// Decks lists deck names in display order.
	Decks []string
	// Members maps a deck to the item ids it contains.
	Members map[string][]string
	History model.History
	// Ranks maps id -> 0-based priority index. Missing ids sort last.
	Ranks map[string]int
	Now   time.Time

	Cramming   bool
	DailyLimit int
	MixedMode  bool
}

// Assemble builds today's snapshot. It never mutates History.
func Assemble(in Input) *model.Today {
	today := &model.Today{
		Decks:    slices.Clone(in.Decks),
		Tags:     make(map[string]*model.DeckToday, len(in.Decks)),
		Combined: model.NewDeckToday(),
	}
	if today.Decks == nil {
		today.Decks = []string{}
	}
	r := ranker{ranks: in.Ranks, unranked: len(in.Ranks)}

	for _, deck := range in.Decks {
		today.Tags[deck] = classifyDeck(in.Members[deck], in.History, in.Now, in.Cramming, r)
	}
	combine(today, r)

	if in.DailyLimit > 0 && !in.Cramming {
		if in.MixedMode {
			limitCombined(today, in.DailyLimit, r)
		} else {
			for _, deck := range today.Decks {
				limitDeck(today.Tags[deck], in.DailyLimit, r)
			}
		}
		combine(today, r)
	}

	for _, deck := range today.Decks {
		setStatus(today.Tags[deck])
	}
	setStatus(today.Combined)
	return today
}

// classifyDeck splits a deck's items into completed-today, due and new.
func classifyDeck(members []string, history model.History, now time.Time, cramming bool, r ranker) *model.DeckToday {
	d := model.NewDeckToday()

	for _, id := range dedupe(members) {
		sessions := history[id]
		if len(sessions) == 0 {
			d.NewIDs = append(d.NewIDs, id)
			continue
		}

		latest := sessions[len(sessions)-1]
		if sameDay(latest.CreatedAt, now) {
			d.CompletedIDs = append(d.CompletedIDs, id)
			if len(sessions) == 1 {
				d.CompletedNewIDs = append(d.CompletedNewIDs, id)
			} else {
				d.CompletedDueIDs = append(d.CompletedDueIDs, id)
			}
			continue
		}

		if cramming || latest.IsDue(now) {
			d.DueIDs = append(d.DueIDs, id)
		}
	}

	r.sort(d.DueIDs)
	r.sort(d.NewIDs)
	r.sort(d.CompletedIDs)
	r.sort(d.CompletedDueIDs)
	r.sort(d.CompletedNewIDs)
	recount(d)
	return d
}

// combine rebuilds the combined view as the deduplicated union of all decks.
func combine(today *model.Today, r ranker) {
	c := model.NewDeckToday()
	for _, deck := range today.Decks {
		d := today.Tags[deck]
		c.DueIDs = append(c.DueIDs, d.DueIDs...)
		c.NewIDs = append(c.NewIDs, d.NewIDs...)
		c.CompletedIDs = append(c.CompletedIDs, d.CompletedIDs...)
		c.CompletedDueIDs = append(c.CompletedDueIDs, d.CompletedDueIDs...)
		c.CompletedNewIDs = append(c.CompletedNewIDs, d.CompletedNewIDs...)
	}
	c.DueIDs = r.sorted(dedupe(c.DueIDs))
	c.NewIDs = r.sorted(dedupe(c.NewIDs))
	c.CompletedIDs = r.sorted(dedupe(c.CompletedIDs))
	c.CompletedDueIDs = r.sorted(dedupe(c.CompletedDueIDs))
	c.CompletedNewIDs = r.sorted(dedupe(c.CompletedNewIDs))
	recount(c)
	today.Combined = c
}

func recount(d *model.DeckToday) {
	d.Due = len(d.DueIDs)
	d.New = len(d.NewIDs)
	d.Completed = len(d.CompletedIDs)
	d.CompletedDue = len(d.CompletedDueIDs)
	d.CompletedNew = len(d.CompletedNewIDs)
}

func setStatus(d *model.DeckToday) {
	switch {
	case d.Remaining() == 0:
		d.Status = model.StatusFinished
	case d.Completed > 0:
		d.Status = model.StatusPartial
	default:
		d.Status = model.StatusUnstarted
	}
}

// sameDay compares calendar dates in now's location.
func sameDay(t, now time.Time) bool {
	if t.IsZero() {
		return false
	}
	y1, m1, d1 := t.In(now.Location()).Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ranker orders ids by priority index, unranked last, ties by id.
type ranker struct {
	ranks    map[string]int
	unranked int
}

func (r ranker) rank(id string) int {
	if i, ok := r.ranks[id]; ok {
		return i
	}
	return r.unranked
}

func (r ranker) sort(ids []string) {
	slices.SortStableFunc(ids, func(a, b string) int {
		if c := cmp.Compare(r.rank(a), r.rank(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
}

func (r ranker) sorted(ids []string) []string {
	r.sort(ids)
	return ids
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
