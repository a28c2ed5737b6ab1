package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/spaced-review/internal/engine"
)

func init() {
	rankCmd := &cobra.Command{
		Use:   "rank",
		Short: "Show or change the priority order",
		Long:  "Ranks are 1-based; rank 1 is reviewed first.",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the priority order",
		Args:  cobra.NoArgs,
		Run:   runRankShow,
	}
	showCmd.Flags().IntP("top", "n", 0, "Only print the first N ranks")

	setCmd := &cobra.Command{
		Use:   "set <id> <rank>",
		Short: "Move an item to a rank",
		Args:  cobra.ExactArgs(2),
		Run:   runRankSet,
	}

	topCmd := &cobra.Command{
		Use:   "top <id>",
		Short: "Move an item to rank 1",
		Args:  cobra.ExactArgs(1),
		Run:   runRankTop,
	}

	bottomCmd := &cobra.Command{
		Use:   "bottom <id>",
		Short: "Move an item to the last rank",
		Args:  cobra.ExactArgs(1),
		Run:   runRankBottom,
	}

	applyCmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply several rank changes from stdin",
		Long:  `Read a JSON array of {"id": "...", "rank": N} from stdin and apply it in one save.`,
		Args:  cobra.NoArgs,
		Run:   runRankApply,
	}

	deckCmd := &cobra.Command{
		Use:   "deck <deck> <rank>",
		Short: "Move a whole deck to a rank as one block",
		Args:  cobra.ExactArgs(2),
		Run:   runRankDeck,
	}

	rankCmd.AddCommand(showCmd, setCmd, topCmd, bottomCmd, applyCmd, deckCmd)
	RootCmd.AddCommand(rankCmd)
}

func runRankShow(cmd *cobra.Command, args []string) {
	top, _ := cmd.Flags().GetInt("top")

	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	order, err := e.Order(cmd.Context(), getDoc())
	if err != nil {
		exitErr("rank show", err)
	}
	if top > 0 && top < len(order) {
		order = order[:top]
	}
	printOrder(order)
}

func runRankSet(cmd *cobra.Command, args []string) {
	rank, err := strconv.Atoi(args[1])
	if err != nil {
		exitErr("rank set", fmt.Errorf("rank must be a number: %w", err))
	}

	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	order, err := e.SetRank(cmd.Context(), getDoc(), args[0], rank)
	if err != nil {
		exitErr("rank set", err)
	}
	printOrder(order)
}

func runRankTop(cmd *cobra.Command, args []string) {
	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	order, err := e.MoveToTop(cmd.Context(), getDoc(), args[0])
	if err != nil {
		exitErr("rank top", err)
	}
	printOrder(order)
}

func runRankBottom(cmd *cobra.Command, args []string) {
	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	order, err := e.MoveToBottom(cmd.Context(), getDoc(), args[0])
	if err != nil {
		exitErr("rank bottom", err)
	}
	printOrder(order)
}

func runRankApply(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		exitErr("read stdin", err)
	}
	var changes []engine.RankChange
	if err := json.Unmarshal(data, &changes); err != nil {
		exitErr("parse json", err)
	}

	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	order, err := e.ApplyRankChanges(cmd.Context(), getDoc(), changes)
	if err != nil {
		exitErr("rank apply", err)
	}
	printOrder(order)
}

func runRankDeck(cmd *cobra.Command, args []string) {
	rank, err := strconv.Atoi(args[1])
	if err != nil {
		exitErr("rank deck", fmt.Errorf("rank must be a number: %w", err))
	}

	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	order, err := e.MoveDeck(cmd.Context(), getDoc(), args[0], rank)
	if err != nil {
		exitErr("rank deck", err)
	}
	printOrder(order)
}

func printOrder(order []string) {
	if textOutput() {
		for i, id := range order {
			fmt.Printf("%4d  %s\n", i+1, id)
		}
		return
	}
	printJSON(order)
}
