package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"plan-tracker/internal/model"
)

// PlanRepository stores plans. Plans are append-only.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, plan *model.Plan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

// ListByUser returns the user's plans in insertion order.
func (r *PlanRepository) ListByUser(ctx context.Context, userID uint) ([]model.Plan, error) {
	var plans []model.Plan
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("rowid ASC").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// FindByID returns model.ErrPlanNotFound (wrapped in *model.NotFoundError) for unknown ids.
func (r *PlanRepository) FindByID(ctx context.Context, userID uint, planID string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, planID).First(&plan).Error
	switch {
	case err == nil:
		return &plan, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &model.NotFoundError{PlanID: planID}
	default:
		return nil, fmt.Errorf("find plan: %w", err)
	}
}
