// Package priority maintains the total review order over item identifiers.
// Position 0 is the highest priority; rank is position + 1.
package priority

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	// ErrDuplicateID reports a broken no-duplicates invariant.
	ErrDuplicateID = errors.New("priority order contains duplicate identifier")
	// ErrRankOutOfRange is returned for a target rank outside [1, total].
	ErrRankOutOfRange = errors.New("target rank out of range")
)

// Manager is an in-memory priority order. It is not safe for concurrent use.
type Manager struct {
	order []string
	dirty bool
}

// New returns a manager holding ids. Repeated identifiers keep their first
// position.
func New(ids []string) *Manager {
	return &Manager{order: dedupe(ids)}
}

// Deserialize restores a manager from its serialized form.
func Deserialize(ids []string) *Manager {
	return New(ids)
}

// FromWeights orders ids by weight, highest first. Equal weights are
// ordered by identifier so the result is deterministic.
func FromWeights(weights map[string]float64) *Manager {
	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		wi, wj := weights[ids[i]], weights[ids[j]]
		if wi != wj {
			return wi > wj
		}
		return ids[i] < ids[j]
	})
	return &Manager{order: ids, dirty: true}
}

// Serialize returns a copy of the order, highest priority first.
func (m *Manager) Serialize() []string {
	return slices.Clone(m.order)
}

// Clone returns an independent copy with the same dirty flag.
func (m *Manager) Clone() *Manager {
	return &Manager{order: slices.Clone(m.order), dirty: m.dirty}
}

func (m *Manager) Len() int { return len(m.order) }

func (m *Manager) Has(id string) bool { return m.IndexOf(id) >= 0 }

// IndexOf returns the 0-based position of id, or -1.
func (m *Manager) IndexOf(id string) int {
	return slices.Index(m.order, id)
}

// RankOf returns the 1-based rank of id. Unranked ids get Len()+1 so they
// never outrank a ranked id.
func (m *Manager) RankOf(id string) int {
	if i := m.IndexOf(id); i >= 0 {
		return i + 1
	}
	return len(m.order) + 1
}

// At returns the id at index.
func (m *Manager) At(index int) (string, bool) {
	if index < 0 || index >= len(m.order) {
		return "", false
	}
	return m.order[index], true
}

// RankMap returns id -> 0-based index for bulk lookups.
func (m *Manager) RankMap() map[string]int {
	ranks := make(map[string]int, len(m.order))
	for i, id := range m.order {
		ranks[id] = i
	}
	return ranks
}

// InsertBefore moves id to just before beforeID, or to the end when
// beforeID is empty or unknown.
func (m *Manager) InsertBefore(id, beforeID string) {
	m.remove(id)
	idx := -1
	if beforeID != "" {
		idx = m.IndexOf(beforeID)
	}
	if idx < 0 {
		m.order = append(m.order, id)
	} else {
		m.order = slices.Insert(m.order, idx, id)
	}
	m.dirty = true
}

// MoveTo moves id to index, clamped to [0, Len()].
func (m *Manager) MoveTo(id string, index int) {
	m.remove(id)
	m.order = slices.Insert(m.order, clamp(index, len(m.order)), id)
	m.dirty = true
}

func (m *Manager) MoveToTop(id string) { m.MoveTo(id, 0) }

func (m *Manager) MoveToBottom(id string) { m.MoveTo(id, len(m.order)) }

// SetRank moves id to the 1-based rank. Ranks outside [1, total] are
// rejected, where total counts id even if it is not yet ranked.
func (m *Manager) SetRank(id string, rank int) error {
	total := len(m.order)
	if !m.Has(id) {
		total++
	}
	if rank < 1 || rank > total {
		return fmt.Errorf("%w: %s -> %d (valid 1-%d)", ErrRankOutOfRange, id, rank, total)
	}
	m.MoveTo(id, rank-1)
	return nil
}

// Remove deletes id if present.
func (m *Manager) Remove(id string) {
	if m.remove(id) {
		m.dirty = true
	}
}

// AddMissing appends ids not already present, keeping their input order.
func (m *Manager) AddMissing(ids []string) []string {
	seen := m.set()
	var added []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		added = append(added, id)
	}
	if len(added) > 0 {
		m.order = append(m.order, added...)
		m.dirty = true
	}
	return added
}

// InsertBlockAt inserts ids not already present as a contiguous block at
// index, clamped to [0, Len()].
func (m *Manager) InsertBlockAt(ids []string, index int) []string {
	seen := m.set()
	var block []string
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		block = append(block, id)
	}
	if len(block) > 0 {
		m.order = slices.Insert(m.order, clamp(index, len(m.order)), block...)
		m.dirty = true
	}
	return block
}

// RemoveOrphaned removes every id in orphaned and returns how many were
// present.
func (m *Manager) RemoveOrphaned(orphaned []string) int {
	drop := make(map[string]struct{}, len(orphaned))
	for _, id := range orphaned {
		drop[id] = struct{}{}
	}
	return m.filter(func(id string) bool {
		_, gone := drop[id]
		return !gone
	})
}

// RetainOnly removes every id not in valid.
func (m *Manager) RetainOnly(valid []string) int {
	keep := make(map[string]struct{}, len(valid))
	for _, id := range valid {
		keep[id] = struct{}{}
	}
	return m.filter(func(id string) bool {
		_, ok := keep[id]
		return ok
	})
}

// Move is one entry of a BatchMove.
type Move struct {
	ID          string `json:"id"`
	TargetIndex int    `json:"target_index"`
}

// BatchMove removes every moving id, then reinserts them in ascending
// target order so earlier inserts do not shift later targets. When an id
// appears more than once its last move wins.
func (m *Manager) BatchMove(moves []Move) {
	if len(moves) == 0 {
		return
	}
	last := make(map[string]int, len(moves))
	for _, mv := range moves {
		last[mv.ID] = mv.TargetIndex
	}
	sorted := make([]Move, 0, len(last))
	for id, target := range last {
		sorted = append(sorted, Move{ID: id, TargetIndex: target})
	}
	slices.SortFunc(sorted, func(a, b Move) int {
		if c := cmp.Compare(a.TargetIndex, b.TargetIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	m.filter(func(id string) bool {
		_, moving := last[id]
		return !moving
	})
	for _, mv := range sorted {
		m.order = slices.Insert(m.order, clamp(mv.TargetIndex, len(m.order)), mv.ID)
	}
	m.dirty = true
}

// MoveGroup relocates ids as one contiguous block at targetIndex, keeping
// their relative order. targetIndex is applied after the group is removed.
func (m *Manager) MoveGroup(ids []string, targetIndex int) {
	group := dedupe(ids)
	if len(group) == 0 {
		return
	}
	moving := make(map[string]struct{}, len(group))
	for _, id := range group {
		moving[id] = struct{}{}
	}
	m.filter(func(id string) bool {
		_, ok := moving[id]
		return !ok
	})
	m.order = slices.Insert(m.order, clamp(targetIndex, len(m.order)), group...)
	m.dirty = true
}

// SetOrder replaces the whole order.
func (m *Manager) SetOrder(ids []string) {
	m.order = dedupe(ids)
	m.dirty = true
}

// DeckPosition is the best rank held by any item of a deck.
type DeckPosition struct {
	Deck      string `json:"deck"`
	Position  int    `json:"position"`
	ItemCount int    `json:"item_count"`
}

// DeckPositions returns each non-empty deck's highest rank, best first.
func (m *Manager) DeckPositions(decks map[string][]string) []DeckPosition {
	ranks := m.RankMap()
	var out []DeckPosition
	for deck, ids := range decks {
		if len(ids) == 0 {
			continue
		}
		best := len(m.order)
		for _, id := range ids {
			if i, ok := ranks[id]; ok && i < best {
				best = i
			}
		}
		out = append(out, DeckPosition{Deck: deck, Position: best + 1, ItemCount: len(ids)})
	}
	slices.SortFunc(out, func(a, b DeckPosition) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.Deck, b.Deck)
	})
	return out
}

// Validate checks the no-duplicates invariant.
func (m *Manager) Validate() error {
	seen := make(map[string]struct{}, len(m.order))
	for _, id := range m.order {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Dirty reports whether the order changed since the last MarkSaved.
func (m *Manager) Dirty() bool { return m.dirty }

func (m *Manager) MarkSaved() { m.dirty = false }

func (m *Manager) remove(id string) bool {
	i := m.IndexOf(id)
	if i < 0 {
		return false
	}
	m.order = slices.Delete(m.order, i, i+1)
	return true
}

// filter keeps ids for which keep returns true and reports how many were
// dropped.
func (m *Manager) filter(keep func(string) bool) int {
	before := len(m.order)
	m.order = slices.DeleteFunc(m.order, func(id string) bool { return !keep(id) })
	dropped := before - len(m.order)
	if dropped > 0 {
		m.dirty = true
	}
	return dropped
}

func (m *Manager) set() map[string]struct{} {
	s := make(map[string]struct{}, len(m.order))
	for _, id := range m.order {
		s[id] = struct{}{}
	}
	return s
}

func clamp(index, length int) int {
	return max(0, min(length, index))
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
