package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	itemCmd := &cobra.Command{
		Use:   "item",
		Short: "Register or unregister review items",
	}

	addCmd := &cobra.Command{
		Use:   "add <id>...",
		Short: "Register items, optionally in a deck",
		Long:  "Register items. New items get a rank the next time the daily queue is assembled.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runItemAdd,
	}
	addCmd.Flags().StringP("deck", "t", "", "Deck to add the items to")

	rmCmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Unregister items",
		Long:  "Unregister items. Their sessions and rank stay until cleanup --apply.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runItemRm,
	}

	itemCmd.AddCommand(addCmd, rmCmd)
	RootCmd.AddCommand(itemCmd)
}

func runItemAdd(cmd *cobra.Command, args []string) {
	deck, _ := cmd.Flags().GetString("deck")

	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	added, err := e.AddItems(cmd.Context(), getDoc(), deck, args)
	if err != nil {
		exitErr("item add", err)
	}
	fmt.Printf(`{"ok":true,"added":%d}`+"\n", added)
}

func runItemRm(cmd *cobra.Command, args []string) {
	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	removed, err := e.RemoveItems(cmd.Context(), getDoc(), args)
	if err != nil {
		exitErr("item rm", err)
	}
	if removed == 0 {
		exitErr("item rm", fmt.Errorf("no matching items"))
	}
	fmt.Printf(`{"ok":true,"removed":%d}`+"\n", removed)
}
