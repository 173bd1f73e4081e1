package tracker

import (
	"fmt"

	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
)

// Snapshot is a validated, point-in-time view of one user's plans, categories
// and checks. It may be arbitrarily stale; refreshing it is up to the caller.
type Snapshot struct {
	Plans      []model.Plan
	Categories []model.Category
	Index      *CheckIndex

	plans map[string]int
}

// NewSnapshot validates every plan and indexes the checks. The first invalid
// plan aborts construction with a *model.ValidationError.
func NewSnapshot(plans []model.Plan, categories []model.Category, checks []model.Check) (*Snapshot, error) {
	byID := make(map[string]int, len(plans))
	for i, plan := range plans {
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("plan %q: %w", plan.ID, err)
		}
		byID[plan.ID] = i
	}
	return &Snapshot{
		Plans:      plans,
		Categories: categories,
		Index:      NewCheckIndex(checks),
		plans:      byID,
	}, nil
}

// Plan looks up a plan by id.
func (s *Snapshot) Plan(id string) (model.Plan, error) {
	i, ok := s.plans[id]
	if !ok {
		return model.Plan{}, &model.NotFoundError{PlanID: id}
	}
	return s.Plans[i], nil
}

// Progress counts the plan's checked slots on date.
func (s *Snapshot) Progress(planID string, date datekey.Key) (Progress, error) {
	plan, err := s.Plan(planID)
	if err != nil {
		return Progress{}, err
	}
	return ComputeProgress(plan.TargetCount, s.Index.ByPlanAndDate(plan.ID, date)), nil
}

// PeriodProgress counts checked rows across the plan's current period.
func (s *Snapshot) PeriodProgress(planID string, date datekey.Key) (Progress, error) {
	plan, err := s.Plan(planID)
	if err != nil {
		return Progress{}, err
	}
	return ComputePeriodProgress(s.Index, plan, date), nil
}

// Vector returns one checkbox flag per target repetition of the plan on date.
func (s *Snapshot) Vector(planID string, date datekey.Key) ([]bool, error) {
	plan, err := s.Plan(planID)
	if err != nil {
		return nil, err
	}
	return TodayVector(plan.TargetCount, s.Index.ByPlanAndDate(plan.ID, date)), nil
}

// DueOn returns the plans active on date in stored order.
func (s *Snapshot) DueOn(date datekey.Key) []model.Plan {
	return ActiveOn(s.Plans, date)
}

func (s *Snapshot) Classify(planID string, cell datekey.Key, opts ClassifyOptions) (CellState, error) {
	plan, err := s.Plan(planID)
	if err != nil {
		return CellUnclassified, err
	}
	return Classify(plan, s.Index, cell, opts), nil
}

func (s *Snapshot) ClassifyMonth(planID, month string, opts ClassifyOptions) ([]Cell, error) {
	plan, err := s.Plan(planID)
	if err != nil {
		return nil, err
	}
	return ClassifyMonth(plan, s.Index, month, opts), nil
}

// CategoryName resolves a category label; missing categories yield "".
func (s *Snapshot) CategoryName(id string) string {
	for _, cat := range s.Categories {
		if cat.ID == id {
			return cat.Name
		}
	}
	return ""
}
