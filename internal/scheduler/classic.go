package scheduler

import (
	"math"

	"github.com/rcliao/spaced-review/internal/model"
)

// MinEaseFactor is the floor applied after every successful review.
const MinEaseFactor = 1.3

// Classic is the SM-2 interval algorithm.
type Classic struct{}

func (Classic) Algorithm() Algorithm { return AlgorithmClassic }

// Schedule applies grade to the prior state. The ease factor only changes
// on a passing grade.
func (Classic) Schedule(in Input) (Result, error) {
	if err := checkGrade(in.Grade); err != nil {
		return Result{}, err
	}

	next := nextClassic(in.Prior, in.Grade)
	return Result{
		State:        next,
		IntervalDays: next.Interval,
		NextDueDate:  AddDays(in.Now, next.Interval),
	}, nil
}

func nextClassic(prior model.GradedState, grade model.Grade) model.GradedState {
	ease := prior.EaseFactor
	if ease == 0 {
		ease = model.DefaultEaseFactor
	}
	next := model.GradedState{Grade: grade, EaseFactor: ease}

	switch {
	case grade == 0:
		next.Interval = 0
		next.Repetitions = 0
	case !grade.Passed():
		next.Interval = 1
		next.Repetitions = 0
	default:
		switch prior.Repetitions {
		case 0:
			next.Interval = 1
		case 1:
			next.Interval = 6
		default:
			next.Interval = int(math.Round(float64(prior.Interval) * ease))
		}
		next.Repetitions = prior.Repetitions + 1

		q := float64(model.MaxGrade - grade)
		next.EaseFactor = math.Max(MinEaseFactor, ease+0.1-q*(0.08+q*0.02))
	}
	return next
}
