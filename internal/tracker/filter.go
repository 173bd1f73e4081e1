package tracker

import (
	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
)

// CategoryGroup is one category header with the plans filed under it.
type CategoryGroup struct {
	Category model.Category
	Plans    []model.Plan
}

// ActiveOn keeps plans whose [StartDate, EndDate] range covers date. Both
// bounds are inclusive and a missing end date never expires. Input order is kept.
func ActiveOn(plans []model.Plan, date datekey.Key) []model.Plan {
	out := make([]model.Plan, 0, len(plans))
	for _, plan := range plans {
		if plan.StartDate > date {
			continue
		}
		if plan.HasEnd() && plan.EndDate < date {
			continue
		}
		out = append(out, plan)
	}
	return out
}

// ByCadence keeps plans with the given repeat type, preserving order.
func ByCadence(plans []model.Plan, repeatType model.RepeatType) []model.Plan {
	out := make([]model.Plan, 0, len(plans))
	for _, plan := range plans {
		if plan.RepeatType == repeatType {
			out = append(out, plan)
		}
	}
	return out
}

// GroupByCategory walks categories in order and collects the matching plans
// for each. Categories without plans are kept only when keepEmpty is set.
func GroupByCategory(plans []model.Plan, categories []model.Category, keepEmpty bool) []CategoryGroup {
	groups := make([]CategoryGroup, 0, len(categories))
	for _, cat := range categories {
		var matched []model.Plan
		for _, plan := range plans {
			if plan.CategoryID == cat.ID {
				matched = append(matched, plan)
			}
		}
		if len(matched) == 0 && !keepEmpty {
			continue
		}
		groups = append(groups, CategoryGroup{Category: cat, Plans: matched})
	}
	return groups
}

// Uncategorized returns plans pointing at a category that is not in categories.
func Uncategorized(plans []model.Plan, categories []model.Category) []model.Plan {
	known := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		known[cat.ID] = struct{}{}
	}
	var out []model.Plan
	for _, plan := range plans {
		if _, ok := known[plan.CategoryID]; !ok {
			out = append(out, plan)
		}
	}
	return out
}
