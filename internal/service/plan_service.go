package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
	"plan-tracker/internal/repository"
)

// PlanInput represents data required to create a plan.
type PlanInput struct {
	Title        string
	CategoryID   string
	RepeatType   model.RepeatType
	RepeatDetail *model.RepeatDetail
	TargetCount  int
	StartDate    datekey.Key
	EndDate      datekey.Key
}

// PlanService wraps plan creation and lookup.
type PlanService struct {
	planRepo     *repository.PlanRepository
	categoryRepo *repository.CategoryRepository
	now          func() time.Time
}

func NewPlanService(planRepo *repository.PlanRepository, categoryRepo *repository.CategoryRepository) *PlanService {
	return &PlanService{planRepo: planRepo, categoryRepo: categoryRepo, now: time.Now}
}

// Create validates input and appends a new plan. The category must exist.
// A missing start date defaults to today.
func (s *PlanService) Create(ctx context.Context, user *model.User, input PlanInput) (*model.Plan, error) {
	today := datekey.Normalize(s.now())
	plan := model.Plan{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		CategoryID:   strings.TrimSpace(input.CategoryID),
		Title:        strings.TrimSpace(input.Title),
		RepeatType:   input.RepeatType,
		RepeatDetail: input.RepeatDetail,
		TargetCount:  input.TargetCount,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		CreatedAt:    today,
	}
	if plan.StartDate == "" {
		plan.StartDate = today
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.categoryRepo.GetByID(ctx, user.ID, plan.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &model.ValidationError{Entity: "plan", Field: "categoryId", Reason: "refers to an unknown category"}
		}
		return nil, fmt.Errorf("find category: %w", err)
	}

	if err := s.planRepo.Create(ctx, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *PlanService) List(ctx context.Context, user *model.User) ([]model.Plan, error) {
	return s.planRepo.ListByUser(ctx, user.ID)
}

func (s *PlanService) Get(ctx context.Context, user *model.User, planID string) (*model.Plan, error) {
	return s.planRepo.FindByID(ctx, user.ID, planID)
}
