package tracker

import (
	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
)

// Progress counts satisfied repetitions against the plan's target.
type Progress struct {
	Completed int
	Total     int
}

// Done reports whether the target is met. Over-completion counts as done.
func (p Progress) Done() bool {
	return p.Completed >= p.Total
}

// ComputeProgress counts checked slots. Total is always the target count,
// never the number of recorded rows.
func ComputeProgress(targetCount int, slots map[int]bool) Progress {
	completed := 0
	for _, checked := range slots {
		if checked {
			completed++
		}
	}
	return Progress{Completed: completed, Total: targetCount}
}

func IsCompleted(targetCount int, slots map[int]bool) bool {
	return ComputeProgress(targetCount, slots).Done()
}

// TodayVector expands slots into one flag per target repetition, in index
// order. Unrecorded slots are false and slots past the target are dropped.
func TodayVector(targetCount int, slots map[int]bool) []bool {
	if targetCount < 0 {
		targetCount = 0
	}
	out := make([]bool, targetCount)
	for i := range out {
		out[i] = slots[i]
	}
	return out
}

// PeriodWindow returns the inclusive date range of the plan period containing
// date: the day itself for daily plans, the Sunday-based week for weekly plans
// and the calendar month for monthly plans. Custom plans fall back to the day.
func PeriodWindow(repeatType model.RepeatType, date datekey.Key) (datekey.Key, datekey.Key) {
	switch repeatType {
	case model.RepeatWeekly:
		start := datekey.WeekStart(date)
		return start, start.AddDays(6)
	case model.RepeatMonthly:
		first := datekey.Key(datekey.MonthKey(date) + "-01")
		next, err := datekey.ParseMonth(datekey.ShiftMonth(datekey.MonthKey(date), 1))
		if err != nil {
			return date, date
		}
		return first, next.AddDays(-1)
	default:
		return date, date
	}
}

// PeriodCount counts the checked rows of the plan inside its current period.
// Every (date, slot) row is a separate repetition, so slot 0 checked on three
// days of a week counts three times.
func PeriodCount(idx *CheckIndex, plan model.Plan, date datekey.Key) int {
	from, to := PeriodWindow(plan.RepeatType, date)
	count := 0
	for _, c := range idx.byPlan[plan.ID] {
		if c.Checked && c.Date >= from && c.Date <= to {
			count++
		}
	}
	return count
}

// ComputePeriodProgress measures the plan's current period against its target.
func ComputePeriodProgress(idx *CheckIndex, plan model.Plan, date datekey.Key) Progress {
	return Progress{Completed: PeriodCount(idx, plan, date), Total: plan.TargetCount}
}
