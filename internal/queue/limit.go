package queue

import (
	"slices"

	"github.com/rcliao/spaced-review/internal/model"
)

// NewShare is the fraction of a budget reserved for new items.
const NewShare = 0.25

// Split divides a budget into new and due targets. A budget of one goes
// entirely to due work; otherwise new items get at least one slot.
func Split(quota int) (targetDue, targetNew int) {
	if quota <= 0 {
		return 0, 0
	}
	if quota == 1 {
		return 1, 0
	}
	targetNew = max(1, int(float64(quota)*NewShare))
	return quota - targetNew, targetNew
}

// RemainingQuota is how much of the daily limit is left after completed work.
func RemainingQuota(dailyLimit, completed int) int {
	return max(0, dailyLimit-completed)
}

// selectTop takes the top targetDue of due and targetNew of new, both already
// in rank order, and fills a shortfall in one pool from the other's remainder.
func selectTop(due, newIDs []string, targetDue, targetNew int) (selDue, selNew []string) {
	takeDue := min(targetDue, len(due))
	takeNew := min(targetNew, len(newIDs))
	short := targetDue + targetNew - takeDue - takeNew

	if extra := min(short, len(due)-takeDue); extra > 0 {
		takeDue += extra
		short -= extra
	}
	if extra := min(short, len(newIDs)-takeNew); extra > 0 {
		takeNew += extra
	}
	return slices.Clone(due[:takeDue]), slices.Clone(newIDs[:takeNew])
}

// budget draws the day's distribution against the full daily limit with
// completed items restored to their pools, so a later pass on the same day
// reproduces the same selection. Completed items are then removed and what is
// left is bounded by the remaining quota.
func budget(d *model.DeckToday, dailyLimit int, r ranker) (due, newIDs []string) {
	duePool := r.sorted(dedupe(append(slices.Clone(d.DueIDs), d.CompletedDueIDs...)))
	newPool := r.sorted(dedupe(append(slices.Clone(d.NewIDs), d.CompletedNewIDs...)))

	targetDue, targetNew := Split(dailyLimit)
	selDue, selNew := selectTop(duePool, newPool, targetDue, targetNew)

	done := make(map[string]struct{}, len(d.CompletedIDs))
	for _, id := range d.CompletedIDs {
		done[id] = struct{}{}
	}
	completed := func(id string) bool { _, ok := done[id]; return ok }
	selDue = slices.DeleteFunc(selDue, completed)
	selNew = slices.DeleteFunc(selNew, completed)

	quotaDue, quotaNew := Split(RemainingQuota(dailyLimit, d.Completed))
	return selectTop(selDue, selNew, quotaDue, quotaNew)
}

func limitDeck(d *model.DeckToday, dailyLimit int, r ranker) {
	d.DueIDs, d.NewIDs = budget(d, dailyLimit, r)
	recount(d)
}

// limitCombined budgets the combined pool and narrows every deck to the
// items that survived selection.
func limitCombined(today *model.Today, dailyLimit int, r ranker) {
	due, newIDs := budget(today.Combined, dailyLimit, r)
	selected := make(map[string]struct{}, len(due)+len(newIDs))
	for _, id := range due {
		selected[id] = struct{}{}
	}
	for _, id := range newIDs {
		selected[id] = struct{}{}
	}
	drop := func(id string) bool { _, ok := selected[id]; return !ok }

	for _, deck := range today.Decks {
		d := today.Tags[deck]
		d.DueIDs = slices.DeleteFunc(d.DueIDs, drop)
		d.NewIDs = slices.DeleteFunc(d.NewIDs, drop)
		recount(d)
	}
}
