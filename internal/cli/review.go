package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/spaced-review/internal/engine"
	"github.com/rcliao/spaced-review/internal/model"
	"github.com/rcliao/spaced-review/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Record a review and schedule the next one",
		Long: "Grade an item from 0 (forgot) to 5 (perfect) and append the session.\n" +
			"Mode defaults to review.algorithm. Fixed mode ignores the grade and\n" +
			"schedules the item --every N --unit later.",
		Args: cobra.ExactArgs(1),
		Run:  runReview,
	}

	cmd.Flags().IntP("grade", "g", -1, "Grade 0-5 (required for classic and adaptive)")
	cmd.Flags().StringP("mode", "m", "", "Review mode: classic, adaptive or fixed")
	cmd.Flags().Int("every", model.DefaultFixedMultiplier, "Fixed mode interval multiplier")
	cmd.Flags().String("unit", string(model.UnitDays), "Fixed mode unit: days, weeks, months, years")
	cmd.Flags().Bool("dry-run", false, "Compute the schedule without saving it")
	cmd.Flags().Bool("cram", false, "Cramming session: nothing is saved (default: review.cramming)")

	RootCmd.AddCommand(cmd)
}

func runReview(cmd *cobra.Command, args []string) {
	grade, _ := cmd.Flags().GetInt("grade")
	mode, _ := cmd.Flags().GetString("mode")
	every, _ := cmd.Flags().GetInt("every")
	unit, _ := cmd.Flags().GetString("unit")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	req := engine.ReviewRequest{
		ItemID: args[0],
		Grade:  model.Grade(grade),
		Mode:   model.ReviewMode(mode),
		DryRun: dryRun,
	}
	if req.Mode == model.ModeFixed {
		req.Fixed = &model.FixedInterval{Multiplier: every, Unit: model.IntervalUnit(unit)}
	} else if !cmd.Flags().Changed("grade") {
		exitErr("review", fmt.Errorf("--grade is required"))
	}

	e, s, err := openEngine()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := e.Review(cmd.Context(), getDoc(), req)
	if err != nil {
		exitErr("review", err)
	}

	if textOutput() {
		heading, _ := store.EncodeSession(res.Session)
		fmt.Printf("%s  %s  next: %s (%s)\n", res.Session.ItemID, heading,
			store.RoamDate(res.Session.NextDueDate), res.NextDueFromNow)
		if !res.Persisted {
			fmt.Println("(not saved)")
		}
		return
	}
	printJSON(res)
}
