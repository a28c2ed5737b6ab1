package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath(), getDoc())
	if err != nil {
		exitErr("stats", err)
	}

	if textOutput() {
		fmt.Printf("database:  %s (%s)\n", stats.DBPath, humanize.Bytes(uint64(stats.DBSizeBytes)))
		fmt.Printf("document:  %s\n", stats.DocID)
		fmt.Printf("items:     %d (%d reviewed)\n", stats.Items, stats.ReviewedItems)
		fmt.Printf("sessions:  %d\n", stats.Sessions)
		fmt.Printf("order:     %d ranked, version %d, %s\n", stats.OrderLength, stats.OrderVersion, stats.OrderFormat)
		return
	}
	printJSON(stats)
}
