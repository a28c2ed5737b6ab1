package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/spaced-review/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show the review sessions of an item",
		Args:  cobra.ExactArgs(1),
		Run:   runHistory,
	}

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sessions, err := e.History(cmd.Context(), getDoc(), args[0])
	if err != nil {
		exitErr("history", err)
	}

	if textOutput() {
		for _, sess := range sessions {
			heading, lines := store.EncodeSession(sess)
			fmt.Println(heading)
			for _, line := range lines {
				fmt.Println("    " + strings.TrimSpace(line))
			}
		}
		return
	}
	printJSON(sessions)
}
