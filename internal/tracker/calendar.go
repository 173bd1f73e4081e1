package tracker

import (
	"strings"

	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
)

// CellState is the heat-map colour of one calendar cell.
type CellState string

const (
	CellSuccess CellState = "success"
	CellFail    CellState = "fail"
	CellNone    CellState = "none"
	// CellUnclassified is used for cadences without a classification rule (custom).
	CellUnclassified CellState = ""
)

// ClassifyOptions tunes the weekly rule.
type ClassifyOptions struct {
	// StrictWeeks scans exactly the seven days of the cell's week instead of
	// every day sharing the month of the week start.
	StrictWeeks bool
}

// Cell is a classified calendar date.
type Cell struct {
	Date    datekey.Key
	InMonth bool
	State   CellState
}

// Classify colours a single cell for plan. Each cell is computed on its own.
func Classify(plan model.Plan, idx *CheckIndex, cell datekey.Key, opts ClassifyOptions) CellState {
	switch plan.RepeatType {
	case model.RepeatDaily:
		return classifyDay(plan, idx, cell)
	case model.RepeatWeekly:
		start := datekey.WeekStart(cell)
		if opts.StrictWeeks {
			end := start.AddDays(6)
			return successOrFail(idx, plan.ID, func(date datekey.Key) bool {
				return date >= start && date <= end
			})
		}
		prefix := datekey.MonthKey(start)
		return successOrFail(idx, plan.ID, func(date datekey.Key) bool {
			return strings.HasPrefix(string(date), prefix)
		})
	case model.RepeatMonthly:
		prefix := datekey.MonthKey(cell)
		return successOrFail(idx, plan.ID, func(date datekey.Key) bool {
			return strings.HasPrefix(string(date), prefix)
		})
	default:
		return CellUnclassified
	}
}

// ClassifyMonth classifies every cell of the Sunday-aligned grid of month (YYYY-MM).
func ClassifyMonth(plan model.Plan, idx *CheckIndex, month string, opts ClassifyOptions) []Cell {
	grid := datekey.MonthGrid(month)
	cells := make([]Cell, 0, len(grid))
	for _, date := range grid {
		cells = append(cells, Cell{
			Date:    date,
			InMonth: datekey.MonthKey(date) == month,
			State:   Classify(plan, idx, date, opts),
		})
	}
	return cells
}

// classifyDay checks for a checked slot first, then for an explicit false
// row. Only when neither exists is the day left blank.
func classifyDay(plan model.Plan, idx *CheckIndex, date datekey.Key) CellState {
	slots := idx.ByPlanAndDate(plan.ID, date)
	for _, checked := range slots {
		if checked {
			return CellSuccess
		}
	}
	if len(slots) > 0 {
		return CellFail
	}
	return CellNone
}

func successOrFail(idx *CheckIndex, planID string, match func(datekey.Key) bool) CellState {
	for _, c := range idx.byPlan[planID] {
		if c.Checked && match(c.Date) {
			return CellSuccess
		}
	}
	return CellFail
}
