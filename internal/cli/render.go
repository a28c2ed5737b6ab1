package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/spaced-review/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	newStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	statusStyles = map[model.CompletionStatus]lipgloss.Style{
		model.StatusUnstarted: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		model.StatusPartial:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.StatusFinished:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
	}
)

// renderToday formats the daily queue, one block per deck followed by the
// combined view.
func renderToday(t *model.Today) string {
	var b strings.Builder
	for _, deck := range t.Decks {
		renderDeck(&b, deck, t.Tags[deck])
	}
	if len(t.Decks) != 1 {
		renderDeck(&b, "all decks", t.Combined)
	}
	return b.String()
}

func renderDeck(b *strings.Builder, name string, d *model.DeckToday) {
	if d == nil {
		return
	}
	status := statusStyles[d.Status].Render(string(d.Status))
	fmt.Fprintf(b, "%s  %s  %s\n",
		titleStyle.Render(name),
		status,
		dimStyle.Render(fmt.Sprintf("%d due, %d new, %d done", d.Due, d.New, d.Completed)),
	)
	for _, id := range d.DueIDs {
		fmt.Fprintf(b, "  %s %s\n", dueStyle.Render("due"), id)
	}
	for _, id := range d.NewIDs {
		fmt.Fprintf(b, "  %s %s\n", newStyle.Render("new"), id)
	}
	b.WriteString("\n")
}
