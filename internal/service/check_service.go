package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
	"plan-tracker/internal/repository"
)

// CheckService toggles repetition slots. Toggling is a read-then-write without
// a transaction, so two concurrent toggles of one slot resolve last-write-wins.
type CheckService struct {
	planRepo  *repository.PlanRepository
	checkRepo *repository.CheckRepository
	now       func() time.Time
}

func NewCheckService(planRepo *repository.PlanRepository, checkRepo *repository.CheckRepository) *CheckService {
	return &CheckService{planRepo: planRepo, checkRepo: checkRepo, now: time.Now}
}

// Toggle sets slot checkIndex of the plan on date. Checking upserts the row
// with CheckedAt = today even when date lies in the past; unchecking deletes
// the row. An empty date means today.
func (s *CheckService) Toggle(ctx context.Context, user *model.User, planID string, checkIndex int, checked bool, date datekey.Key) error {
	plan, err := s.planRepo.FindByID(ctx, user.ID, planID)
	if err != nil {
		return err
	}

	today := datekey.Normalize(s.now())
	if date == "" {
		date = today
	}
	check := model.Check{
		ID:         uuid.NewString(),
		PlanID:     plan.ID,
		Date:       date,
		CheckIndex: checkIndex,
		UserID:     user.ID,
		Checked:    true,
		CheckedAt:  today,
	}
	if err := check.ValidateFor(*plan); err != nil {
		return err
	}

	if !checked {
		return s.checkRepo.DeleteByKey(ctx, check.Key())
	}
	return s.checkRepo.Upsert(ctx, &check)
}
