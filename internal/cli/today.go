package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "today [deck]...",
		Short: "Show today's review queue",
		Long: "Assemble today's due and new items per deck, ordered by priority and\n" +
			"bounded by review.daily_limit. With no decks, every deck is shown.",
		Run: runToday,
	}

	cmd.Flags().Bool("cram", false, "Treat every reviewed item as due and ignore the daily limit")
	cmd.Flags().Int("limit", 0, "Daily limit, 0 for unlimited (default: review.daily_limit)")

	RootCmd.AddCommand(cmd)
}

func runToday(cmd *cobra.Command, args []string) {
	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	today, err := e.Today(cmd.Context(), getDoc(), args)
	if err != nil {
		exitErr("today", err)
	}

	if textOutput() {
		fmt.Print(renderToday(today))
		return
	}
	printJSON(today)
}
