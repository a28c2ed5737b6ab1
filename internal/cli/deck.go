package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	deckCmd := &cobra.Command{
		Use:   "deck",
		Short: "Inspect decks",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List decks with item counts",
		Run:   runDeckList,
	}

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "Show the best rank held by each deck",
		Run:   runDeckPositions,
	}

	deckCmd.AddCommand(listCmd, positionsCmd)
	RootCmd.AddCommand(deckCmd)
}

func runDeckList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	decks, err := s.Decks(cmd.Context(), getDoc())
	if err != nil {
		exitErr("deck list", err)
	}

	if textOutput() {
		for _, d := range decks {
			fmt.Printf("%s (%d)\n", d.Name, d.Items)
		}
		return
	}
	printJSON(decks)
}

func runDeckPositions(cmd *cobra.Command, args []string) {
	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	positions, err := e.DeckPositions(cmd.Context(), getDoc())
	if err != nil {
		exitErr("deck positions", err)
	}

	if textOutput() {
		for _, p := range positions {
			fmt.Printf("%4d  %s (%d items)\n", p.Position, p.Deck, p.ItemCount)
		}
		return
	}
	printJSON(positions)
}
