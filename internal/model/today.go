package model

// CompletionStatus summarizes a deck's progress for the day.
type CompletionStatus string

const (
	StatusUnstarted CompletionStatus = "unstarted"
	StatusPartial   CompletionStatus = "partial"
	StatusFinished  CompletionStatus = "finished"
)

// DeckToday holds the remaining and completed work of one deck (or the
// combined view) for the current day.
type DeckToday struct {
	Status CompletionStatus `json:"status"`

	Due    int      `json:"due"`
	New    int      `json:"new"`
	DueIDs []string `json:"due_ids"`
	NewIDs []string `json:"new_ids"`

	Completed       int      `json:"completed"`
	CompletedIDs    []string `json:"completed_ids"`
	CompletedDue    int      `json:"completed_due"`
	CompletedDueIDs []string `json:"completed_due_ids"`
	CompletedNew    int      `json:"completed_new"`
	CompletedNewIDs []string `json:"completed_new_ids"`
}

// NewDeckToday returns zero-valued stats with non-nil id lists.
func NewDeckToday() *DeckToday {
	return &DeckToday{
		Status:          StatusUnstarted,
		DueIDs:          []string{},
		NewIDs:          []string{},
		CompletedIDs:    []string{},
		CompletedDueIDs: []string{},
		CompletedNewIDs: []string{},
	}
}

// Remaining is the count of items still to review.
func (d *DeckToday) Remaining() int {
	return d.Due + d.New
}

// Today is the snapshot of all decks plus the deduplicated combined view.
type Today struct {
	Decks    []string              `json:"decks"`
	Tags     map[string]*DeckToday `json:"tags"`
	Combined *DeckToday            `json:"combined"`
}
