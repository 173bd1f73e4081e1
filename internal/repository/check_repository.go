package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plan-tracker/internal/model"
)

// CheckRepository writes check rows keyed by (plan, date, slot, user).
type CheckRepository struct {
	db *gorm.DB
}

func NewCheckRepository(db *gorm.DB) *CheckRepository {
	return &CheckRepository{db: db}
}

// Upsert creates the row for the check's natural key or overwrites the
// existing one. The stored id of an existing row is kept.
func (r *CheckRepository) Upsert(ctx context.Context, check *model.Check) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "plan_id"},
			{Name: "date"},
			{Name: "check_index"},
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"checked", "checked_at"}),
	}).Create(check).Error
	if err != nil {
		return fmt.Errorf("upsert check: %w", err)
	}
	stored, err := r.FindByKey(ctx, check.Key())
	if err != nil {
		return fmt.Errorf("reload check: %w", err)
	}
	*check = *stored
	return nil
}

// DeleteByKey removes the row for key if present. Deleting a missing row is not an error.
func (r *CheckRepository) DeleteByKey(ctx context.Context, key model.CheckKey) error {
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND date = ? AND check_index = ? AND user_id = ?", key.PlanID, key.Date, key.CheckIndex, key.UserID).
		Delete(&model.Check{}).Error
	if err != nil {
		return fmt.Errorf("delete check: %w", err)
	}
	return nil
}

func (r *CheckRepository) FindByKey(ctx context.Context, key model.CheckKey) (*model.Check, error) {
	var check model.Check
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND date = ? AND check_index = ? AND user_id = ?", key.PlanID, key.Date, key.CheckIndex, key.UserID).
		First(&check).Error
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// ListByUser returns every check row of the user.
func (r *CheckRepository) ListByUser(ctx context.Context, userID uint) ([]model.Check, error) {
	var checks []model.Check
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&checks).Error; err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	return checks, nil
}
