// Package tracker derives plan progress, due plans and calendar
// classifications from immutable snapshots of plans and checks.
package tracker

import (
	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
)

type dayKey struct {
	planID string
	date   datekey.Key
}

// CheckIndex groups check rows by plan and date. It is read-only: callers
// build a fresh index from a new read after every write.
type CheckIndex struct {
	byDay  map[dayKey]map[int]model.Check
	byDate map[datekey.Key][]dayKey
	byPlan map[string][]model.Check
	size   int
}

// NewCheckIndex builds an index in a single pass over checks. When the input
// repeats a natural key the later row wins.
func NewCheckIndex(checks []model.Check) *CheckIndex {
	idx := &CheckIndex{
		byDay:  make(map[dayKey]map[int]model.Check),
		byDate: make(map[datekey.Key][]dayKey),
		byPlan: make(map[string][]model.Check),
	}
	for _, c := range checks {
		key := dayKey{planID: c.PlanID, date: c.Date}
		slots, ok := idx.byDay[key]
		if !ok {
			slots = make(map[int]model.Check)
			idx.byDay[key] = slots
			idx.byDate[c.Date] = append(idx.byDate[c.Date], key)
		}
		if _, dup := slots[c.CheckIndex]; !dup {
			idx.size++
		}
		slots[c.CheckIndex] = c
	}
	for _, slots := range idx.byDay {
		for _, c := range slots {
			idx.byPlan[c.PlanID] = append(idx.byPlan[c.PlanID], c)
		}
	}
	return idx
}

// Len returns the number of distinct check rows in the index.
func (idx *CheckIndex) Len() int {
	return idx.size
}

// ByPlanAndDate maps checkIndex to the checked flag for one plan on one date.
func (idx *CheckIndex) ByPlanAndDate(planID string, date datekey.Key) map[int]bool {
	return toFlags(idx.byDay[dayKey{planID: planID, date: date}])
}

// ForDate returns the slots of every plan that has rows on date.
func (idx *CheckIndex) ForDate(date datekey.Key) map[string]map[int]bool {
	out := make(map[string]map[int]bool, len(idx.byDate[date]))
	for _, key := range idx.byDate[date] {
		out[key.planID] = toFlags(idx.byDay[key])
	}
	return out
}

// AllForPlan returns every row of a plan in no particular order.
func (idx *CheckIndex) AllForPlan(planID string) []model.Check {
	rows := idx.byPlan[planID]
	out := make([]model.Check, len(rows))
	copy(out, rows)
	return out
}

// Row looks up a single row by plan, date and slot.
func (idx *CheckIndex) Row(planID string, date datekey.Key, checkIndex int) (model.Check, bool) {
	c, ok := idx.byDay[dayKey{planID: planID, date: date}][checkIndex]
	return c, ok
}

func toFlags(slots map[int]model.Check) map[int]bool {
	out := make(map[int]bool, len(slots))
	for i, c := range slots {
		out[i] = c.Checked
	}
	return out
}
