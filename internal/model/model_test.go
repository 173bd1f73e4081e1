package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() Plan {
	return Plan{
		ID:          "p1",
		CategoryID:  "health",
		Title:       "Push-ups",
		RepeatType:  RepeatDaily,
		TargetCount: 2,
		StartDate:   "2024-01-10",
		EndDate:     "2024-01-20",
	}
}

func TestPlanValidate(t *testing.T) {
	require.NoError(t, validPlan().Validate())

	cases := map[string]func(p *Plan){
		"title":        func(p *Plan) { p.Title = "  " },
		"categoryId":   func(p *Plan) { p.CategoryID = "" },
		"repeatType":   func(p *Plan) { p.RepeatType = "yearly" },
		"targetCount":  func(p *Plan) { p.TargetCount = 0 },
		"startDate":    func(p *Plan) { p.StartDate = "2024/01/10" },
		"endDate":      func(p *Plan) { p.EndDate = "2024-01-09" },
		"repeatDetail": func(p *Plan) { p.RepeatType = RepeatCustom },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			p := validPlan()
			mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, field, verr.Field)
		})
	}
}

func TestPlanValidateEndDateOptional(t *testing.T) {
	p := validPlan()
	p.EndDate = ""
	assert.NoError(t, p.Validate())
	assert.False(t, p.HasEnd())

	p.EndDate = p.StartDate
	assert.NoError(t, p.Validate())
}

func TestPlanValidateRepeatDetail(t *testing.T) {
	p := validPlan()
	p.RepeatType = RepeatCustom
	p.RepeatDetail = &RepeatDetail{Interval: 2, Unit: UnitWeek}
	require.NoError(t, p.Validate())

	p.RepeatDetail = &RepeatDetail{Interval: 0, Unit: UnitWeek}
	assert.ErrorIs(t, p.Validate(), ErrValidation)

	p.RepeatDetail = &RepeatDetail{Interval: 1, Unit: "year"}
	assert.ErrorIs(t, p.Validate(), ErrValidation)

	p = validPlan()
	p.RepeatDetail = &RepeatDetail{Interval: 1, Unit: UnitDay}
	assert.ErrorIs(t, p.Validate(), ErrValidation)
}

func TestParseRepeatType(t *testing.T) {
	rt, ok := ParseRepeatType(" Weekly ")
	require.True(t, ok)
	assert.Equal(t, RepeatWeekly, rt)

	rt, ok = ParseRepeatType("ежемесячно")
	require.True(t, ok)
	assert.Equal(t, RepeatMonthly, rt)

	_, ok = ParseRepeatType("sometimes")
	assert.False(t, ok)
}

func TestCategorySlug(t *testing.T) {
	cases := map[string]string{
		"Health":             "health",
		"  Deep   Work  ":    "deep_work",
		"Side-Project #2":    "sideproject_2",
		"Tab\tSeparated":     "tab_separated",
		"already_slugged_01": "already_slugged_01",
		"Учеба":              "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CategorySlug(in), "slug of %q", in)
	}
}

func TestCategoryValidate(t *testing.T) {
	assert.NoError(t, Category{ID: "health", Name: "Health"}.Validate())
	assert.ErrorIs(t, Category{ID: "", Name: "Учеба"}.Validate(), ErrValidation)
	assert.ErrorIs(t, Category{ID: "health", Name: ""}.Validate(), ErrValidation)
	assert.ErrorIs(t, Category{ID: "Health", Name: "Health"}.Validate(), ErrValidation)
}

func TestCheckValidateFor(t *testing.T) {
	plan := validPlan()
	check := Check{PlanID: plan.ID, Date: "2024-01-12", CheckIndex: 1}
	require.NoError(t, check.ValidateFor(plan))

	check.CheckIndex = 2
	assert.ErrorIs(t, check.ValidateFor(plan), ErrValidation)

	check.CheckIndex = -1
	assert.ErrorIs(t, check.ValidateFor(plan), ErrValidation)

	check = Check{PlanID: "other", Date: "2024-01-12"}
	assert.ErrorIs(t, check.ValidateFor(plan), ErrValidation)
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{PlanID: "missing"})
	assert.ErrorIs(t, err, ErrPlanNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Ann", User{FirstName: " Ann ", Username: "ann"}.DisplayName())
	assert.Equal(t, "ann", User{Username: "ann"}.DisplayName())
	assert.Empty(t, User{}.DisplayName())
}
