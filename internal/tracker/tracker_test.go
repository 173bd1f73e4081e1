package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
)

func plan(id string, repeat model.RepeatType, target int) model.Plan {
	return model.Plan{
		ID:          id,
		CategoryID:  "health",
		Title:       "plan " + id,
		RepeatType:  repeat,
		TargetCount: target,
		StartDate:   "2024-01-01",
	}
}

func check(planID string, date datekey.Key, idx int, checked bool) model.Check {
	return model.Check{PlanID: planID, Date: date, CheckIndex: idx, Checked: checked, UserID: 1}
}

func TestCheckIndexLookups(t *testing.T) {
	idx := NewCheckIndex([]model.Check{
		check("p", "2024-03-01", 0, true),
		check("p", "2024-03-01", 1, false),
		check("q", "2024-03-01", 0, true),
		check("p", "2024-03-02", 0, true),
	})

	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, map[int]bool{0: true, 1: false}, idx.ByPlanAndDate("p", "2024-03-01"))
	assert.Empty(t, idx.ByPlanAndDate("p", "2024-03-03"))

	day := idx.ForDate("2024-03-01")
	assert.Len(t, day, 2)
	assert.Equal(t, map[int]bool{0: true}, day["q"])

	assert.Len(t, idx.AllForPlan("p"), 3)
	assert.Empty(t, idx.AllForPlan("missing"))

	row, ok := idx.Row("p", "2024-03-01", 1)
	require.True(t, ok)
	assert.False(t, row.Checked)
}

func TestCheckIndexLaterRowWins(t *testing.T) {
	idx := NewCheckIndex([]model.Check{
		check("p", "2024-03-01", 2, false),
		check("p", "2024-03-01", 2, true),
	})
	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, map[int]bool{2: true}, idx.ByPlanAndDate("p", "2024-03-01"))
}

func TestProgressWithoutChecks(t *testing.T) {
	for target := 1; target <= 5; target++ {
		got := ComputeProgress(target, nil)
		assert.Equal(t, Progress{Completed: 0, Total: target}, got)
		assert.False(t, IsCompleted(target, nil))
	}
}

func TestProgressOverCompletion(t *testing.T) {
	slots := map[int]bool{0: true, 1: true}
	got := ComputeProgress(1, slots)
	assert.Equal(t, 2, got.Completed)
	assert.Equal(t, 1, got.Total)
	assert.True(t, IsCompleted(1, slots))
}

func TestProgressIgnoresUncheckedSlots(t *testing.T) {
	got := ComputeProgress(3, map[int]bool{0: true, 1: false, 2: true})
	assert.Equal(t, Progress{Completed: 2, Total: 3}, got)
	assert.False(t, got.Done())
}

func TestTodayVector(t *testing.T) {
	assert.Equal(t, []bool{false, false, true}, TodayVector(3, map[int]bool{2: true}))
	assert.Equal(t, []bool{true}, TodayVector(1, map[int]bool{0: true, 4: true}))
	assert.Len(t, TodayVector(4, nil), 4)
}

func TestPeriodWindow(t *testing.T) {
	from, to := PeriodWindow(model.RepeatDaily, "2024-03-01")
	assert.Equal(t, datekey.Key("2024-03-01"), from)
	assert.Equal(t, datekey.Key("2024-03-01"), to)

	from, to = PeriodWindow(model.RepeatWeekly, "2024-03-01")
	assert.Equal(t, datekey.Key("2024-02-25"), from)
	assert.Equal(t, datekey.Key("2024-03-02"), to)

	from, to = PeriodWindow(model.RepeatMonthly, "2024-02-10")
	assert.Equal(t, datekey.Key("2024-02-01"), from)
	assert.Equal(t, datekey.Key("2024-02-29"), to)
}

func TestPeriodCountStaysInsideWeek(t *testing.T) {
	p := plan("w", model.RepeatWeekly, 3)
	idx := NewCheckIndex([]model.Check{
		check("w", "2024-02-24", 0, true), // previous week
		check("w", "2024-02-25", 0, true),
		check("w", "2024-02-28", 1, true),
		check("w", "2024-02-29", 0, false),
		check("w", "2024-03-03", 2, true), // next week
	})
	assert.Equal(t, 2, PeriodCount(idx, p, "2024-03-01"))
	assert.Equal(t, Progress{Completed: 2, Total: 3}, ComputePeriodProgress(idx, p, "2024-03-01"))
}

func TestPeriodCountSameSlotOnDifferentDays(t *testing.T) {
	p := plan("w", model.RepeatWeekly, 3)
	idx := NewCheckIndex([]model.Check{
		check("w", "2024-03-04", 0, true),
		check("w", "2024-03-06", 0, true),
		check("w", "2024-03-08", 0, true),
	})
	progress := ComputePeriodProgress(idx, p, "2024-03-08")
	assert.Equal(t, Progress{Completed: 3, Total: 3}, progress)
	assert.True(t, progress.Done())

	monthly := plan("m", model.RepeatMonthly, 4)
	idx = NewCheckIndex([]model.Check{
		check("m", "2024-03-01", 0, true),
		check("m", "2024-03-01", 1, true),
		check("m", "2024-03-15", 0, true),
		check("m", "2024-04-01", 0, true),
	})
	assert.Equal(t, Progress{Completed: 3, Total: 4}, ComputePeriodProgress(idx, monthly, "2024-03-31"))

	daily := plan("d", model.RepeatDaily, 2)
	idx = NewCheckIndex([]model.Check{
		check("d", "2024-03-01", 0, true),
		check("d", "2024-03-02", 0, true),
	})
	assert.Equal(t, Progress{Completed: 1, Total: 2}, ComputePeriodProgress(idx, daily, "2024-03-01"))
}

func TestActiveOnBoundaries(t *testing.T) {
	p := plan("p", model.RepeatDaily, 1)
	p.StartDate = "2024-01-10"
	p.EndDate = "2024-01-20"
	open := plan("open", model.RepeatDaily, 1)
	open.StartDate = "2024-01-10"
	plans := []model.Plan{p, open}

	assert.Len(t, ActiveOn(plans, "2024-01-10"), 2)
	assert.Len(t, ActiveOn(plans, "2024-01-20"), 2)
	assert.Empty(t, ActiveOn(plans, "2024-01-09"))

	after := ActiveOn(plans, "2024-01-21")
	require.Len(t, after, 1)
	assert.Equal(t, "open", after[0].ID)

	assert.Len(t, ActiveOn(plans, "2099-12-31"), 1)
}

func TestByCadenceKeepsOrder(t *testing.T) {
	plans := []model.Plan{
		plan("a", model.RepeatWeekly, 1),
		plan("b", model.RepeatDaily, 1),
		plan("c", model.RepeatWeekly, 1),
	}
	weekly := ByCadence(plans, model.RepeatWeekly)
	require.Len(t, weekly, 2)
	assert.Equal(t, "a", weekly[0].ID)
	assert.Equal(t, "c", weekly[1].ID)
	assert.Empty(t, ByCadence(plans, model.RepeatMonthly))
}

func TestGroupByCategory(t *testing.T) {
	categories := []model.Category{{ID: "health", Name: "Health"}, {ID: "study", Name: "Study"}, {ID: "work", Name: "Work"}}
	a := plan("a", model.RepeatDaily, 1)
	a.CategoryID = "work"
	b := plan("b", model.RepeatDaily, 1)
	b.CategoryID = "health"
	c := plan("c", model.RepeatDaily, 1)
	c.CategoryID = "work"
	orphan := plan("d", model.RepeatDaily, 1)
	orphan.CategoryID = "deleted"
	plans := []model.Plan{a, b, c, orphan}

	groups := GroupByCategory(plans, categories, true)
	require.Len(t, groups, 3)
	assert.Equal(t, "health", groups[0].Category.ID)
	assert.Empty(t, groups[1].Plans)
	require.Len(t, groups[2].Plans, 2)
	assert.Equal(t, "a", groups[2].Plans[0].ID)
	assert.Equal(t, "c", groups[2].Plans[1].ID)

	compact := GroupByCategory(plans, categories, false)
	require.Len(t, compact, 2)
	assert.Equal(t, "work", compact[1].Category.ID)

	missing := Uncategorized(plans, categories)
	require.Len(t, missing, 1)
	assert.Equal(t, "d", missing[0].ID)
}

func TestClassifyDaily(t *testing.T) {
	p := plan("P", model.RepeatDaily, 2)

	idx := NewCheckIndex([]model.Check{check("P", "2024-03-01", 0, true)})
	assert.Equal(t, CellSuccess, Classify(p, idx, "2024-03-01", ClassifyOptions{}))

	idx = NewCheckIndex([]model.Check{check("P", "2024-03-01", 0, false)})
	assert.Equal(t, CellFail, Classify(p, idx, "2024-03-01", ClassifyOptions{}))

	idx = NewCheckIndex(nil)
	assert.Equal(t, CellNone, Classify(p, idx, "2024-03-01", ClassifyOptions{}))
}

func TestClassifyDailySuccessBeatsExplicitFalse(t *testing.T) {
	p := plan("P", model.RepeatDaily, 2)
	idx := NewCheckIndex([]model.Check{
		check("P", "2024-03-01", 0, false),
		check("P", "2024-03-01", 1, true),
	})
	assert.Equal(t, CellSuccess, Classify(p, idx, "2024-03-01", ClassifyOptions{}))
}

func TestClassifyMonthly(t *testing.T) {
	q := plan("Q", model.RepeatMonthly, 1)
	idx := NewCheckIndex([]model.Check{check("Q", "2024-05-17", 0, true)})

	for _, cell := range []datekey.Key{"2024-05-01", "2024-05-17", "2024-05-31"} {
		assert.Equal(t, CellSuccess, Classify(q, idx, cell, ClassifyOptions{}), cell)
	}
	assert.Equal(t, CellFail, Classify(q, idx, "2024-06-01", ClassifyOptions{}))

	unchecked := NewCheckIndex([]model.Check{check("Q", "2024-05-17", 0, false)})
	assert.Equal(t, CellFail, Classify(q, unchecked, "2024-05-17", ClassifyOptions{}))
}

func TestClassifyWeeklyCoarseMonthFilter(t *testing.T) {
	w := plan("W", model.RepeatWeekly, 1)
	// 2024-03-01 belongs to the week starting Sunday 2024-02-25.
	earlierInFebruary := NewCheckIndex([]model.Check{check("W", "2024-02-10", 0, true)})
	assert.Equal(t, CellSuccess, Classify(w, earlierInFebruary, "2024-03-01", ClassifyOptions{}))
	assert.Equal(t, CellFail, Classify(w, earlierInFebruary, "2024-03-01", ClassifyOptions{StrictWeeks: true}))

	sameWeekInMarch := NewCheckIndex([]model.Check{check("W", "2024-03-02", 0, true)})
	assert.Equal(t, CellFail, Classify(w, sameWeekInMarch, "2024-03-01", ClassifyOptions{}))
	assert.Equal(t, CellSuccess, Classify(w, sameWeekInMarch, "2024-03-01", ClassifyOptions{StrictWeeks: true}))

	assert.Equal(t, CellFail, Classify(w, NewCheckIndex(nil), "2024-03-13", ClassifyOptions{}))
}

func TestClassifyCustomIsUnclassified(t *testing.T) {
	c := plan("C", model.RepeatCustom, 1)
	c.RepeatDetail = &model.RepeatDetail{Interval: 2, Unit: model.UnitDay}
	idx := NewCheckIndex([]model.Check{check("C", "2024-03-01", 0, true)})
	assert.Equal(t, CellUnclassified, Classify(c, idx, "2024-03-01", ClassifyOptions{}))
}

func TestClassifyMonthGrid(t *testing.T) {
	p := plan("P", model.RepeatDaily, 1)
	idx := NewCheckIndex([]model.Check{
		check("P", "2024-03-01", 0, true),
		check("P", "2024-03-02", 0, false),
	})
	cells := ClassifyMonth(p, idx, "2024-03", ClassifyOptions{})
	require.Len(t, cells, 42)
	assert.False(t, cells[0].InMonth)

	states := make(map[datekey.Key]CellState)
	for _, cell := range cells {
		states[cell.Date] = cell.State
	}
	assert.Equal(t, CellSuccess, states["2024-03-01"])
	assert.Equal(t, CellFail, states["2024-03-02"])
	assert.Equal(t, CellNone, states["2024-03-03"])
}

func TestSnapshot(t *testing.T) {
	p := plan("P", model.RepeatDaily, 2)
	w := plan("W", model.RepeatWeekly, 2)
	snap, err := NewSnapshot([]model.Plan{p, w}, []model.Category{{ID: "health", Name: "Health"}}, []model.Check{
		check("P", "2024-03-01", 1, true),
		check("W", "2024-02-26", 0, true),
		check("W", "2024-02-29", 1, true),
	})
	require.NoError(t, err)

	progress, err := snap.Progress("P", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, Progress{Completed: 1, Total: 2}, progress)

	vector, err := snap.Vector("P", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, vector)

	period, err := snap.PeriodProgress("W", "2024-03-01")
	require.NoError(t, err)
	assert.True(t, period.Done())

	state, err := snap.Classify("P", "2024-03-01", ClassifyOptions{})
	require.NoError(t, err)
	assert.Equal(t, CellSuccess, state)

	assert.Equal(t, "Health", snap.CategoryName("health"))
	assert.Equal(t, "", snap.CategoryName("gone"))
	assert.Len(t, snap.DueOn("2023-12-31"), 0)
	assert.Len(t, snap.DueOn("2024-01-01"), 2)
}

func TestSnapshotUnknownPlan(t *testing.T) {
	snap, err := NewSnapshot(nil, nil, []model.Check{check("ghost", "2024-03-01", 0, true)})
	require.NoError(t, err)

	_, err = snap.Progress("ghost", "2024-03-01")
	assert.True(t, errors.Is(err, model.ErrPlanNotFound))

	_, err = snap.Vector("ghost", "2024-03-01")
	assert.ErrorIs(t, err, model.ErrPlanNotFound)

	state, err := snap.Classify("ghost", "2024-03-01", ClassifyOptions{})
	assert.ErrorIs(t, err, model.ErrPlanNotFound)
	assert.Equal(t, CellUnclassified, state)

	_, err = snap.ClassifyMonth("ghost", "2024-03", ClassifyOptions{})
	var notFound *model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.PlanID)
}

func TestSnapshotRejectsInvalidPlans(t *testing.T) {
	bad := plan("bad", model.RepeatDaily, 0)
	_, err := NewSnapshot([]model.Plan{bad}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "targetCount", verr.Field)
}
