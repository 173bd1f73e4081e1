package model

import "plan-tracker/internal/datekey"

// Check records one repetition slot of a plan on a date. The tuple
// (PlanID, Date, CheckIndex, UserID) is unique; an absent row means "not checked".
type Check struct {
	ID         string      `gorm:"primaryKey"`
	PlanID     string      `gorm:"uniqueIndex:idx_check_natural_key"`
	Date       datekey.Key `gorm:"uniqueIndex:idx_check_natural_key"`
	CheckIndex int         `gorm:"uniqueIndex:idx_check_natural_key"`
	UserID     uint        `gorm:"uniqueIndex:idx_check_natural_key"`
	Checked    bool
	CheckedAt  datekey.Key // day the action was recorded, may differ from Date when backfilling
}

// CheckKey is the natural key of a Check.
type CheckKey struct {
	PlanID     string
	Date       datekey.Key
	CheckIndex int
	UserID     uint
}

func (c Check) Key() CheckKey {
	return CheckKey{PlanID: c.PlanID, Date: c.Date, CheckIndex: c.CheckIndex, UserID: c.UserID}
}

// ValidateFor checks a slot write against the plan it belongs to.
func (c Check) ValidateFor(plan Plan) error {
	if c.PlanID != plan.ID {
		return invalid("check", "planId", "does not match plan")
	}
	if !c.Date.Valid() {
		return invalid("check", "date", "must be a YYYY-MM-DD date")
	}
	if c.CheckIndex < 0 || c.CheckIndex >= plan.TargetCount {
		return invalid("check", "checkIndex", "must be within [0, targetCount)")
	}
	return nil
}
