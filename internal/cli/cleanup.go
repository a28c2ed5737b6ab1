package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Find review data of unregistered items",
		Long:  "Report sessions and rank entries left behind by removed items. Pass --apply to delete them.",
		Args:  cobra.NoArgs,
		Run:   runCleanup,
	}

	cmd.Flags().Bool("apply", false, "Delete the orphaned data")

	RootCmd.AddCommand(cmd)
}

func runCleanup(cmd *cobra.Command, args []string) {
	apply, _ := cmd.Flags().GetBool("apply")

	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	report, err := e.Cleanup(cmd.Context(), getDoc(), apply)
	if err != nil {
		exitErr("cleanup", err)
	}

	if textOutput() {
		verb := "found"
		if report.Applied {
			verb = "removed"
		}
		fmt.Printf("%s %d orphaned items (%d sessions, %d rank entries)\n",
			verb, len(report.OrphanedIDs), report.SessionRecords, report.OrderEntries)
		return
	}
	printJSON(report)
}
