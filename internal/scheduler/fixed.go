package scheduler

import (
	"fmt"
	"time"

	"github.com/rcliao/spaced-review/internal/model"
)

// ScheduleFixed returns the due date of a fixed-interval review created at
// now. No memory state is involved.
func ScheduleFixed(now time.Time, fi model.FixedInterval) (time.Time, int, error) {
	if fi.Multiplier < 0 {
		return time.Time{}, 0, fmt.Errorf("interval multiplier must not be negative, got %d", fi.Multiplier)
	}
	unit, err := fi.Unit.Days()
	if err != nil {
		return time.Time{}, 0, err
	}
	days := fi.Multiplier * unit
	return AddDays(now, days), days, nil
}
