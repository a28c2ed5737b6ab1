package priority

import "slices"

// PlacementIndex returns where new items go in an order of total items for
// a default priority of 0-100, higher meaning more urgent.
func PlacementIndex(total, defaultPriority int) int {
	p := max(0, min(100, defaultPriority))
	return total * (100 - p) / 100
}

// PlaceNew inserts ids missing from m as one block at the placement index,
// sorted by identifier. It returns the inserted ids.
func PlaceNew(m *Manager, ids []string, defaultPriority int) []string {
	var missing []string
	for _, id := range ids {
		if !m.Has(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	missing = slices.Compact(missing)
	return m.InsertBlockAt(missing, PlacementIndex(m.Len(), defaultPriority))
}
