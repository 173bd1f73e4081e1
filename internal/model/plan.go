package model

import (
	"strings"
	"time"

	"plan-tracker/internal/datekey"
)

type RepeatType string

const (
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatCustom  RepeatType = "custom"
)

// Cadences lists the repeat types in display order.
var Cadences = []RepeatType{RepeatDaily, RepeatWeekly, RepeatMonthly}

func (r RepeatType) Valid() bool {
	switch r {
	case RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatCustom:
		return true
	default:
		return false
	}
}

// ParseRepeatType accepts the canonical names and a few spoken aliases.
func ParseRepeatType(raw string) (RepeatType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "daily", "day", "ежедневно", "каждый день":
		return RepeatDaily, true
	case "weekly", "week", "еженедельно", "каждую неделю":
		return RepeatWeekly, true
	case "monthly", "month", "ежемесячно", "каждый месяц":
		return RepeatMonthly, true
	case "custom":
		return RepeatCustom, true
	default:
		return "", false
	}
}

type RepeatUnit string

const (
	UnitDay   RepeatUnit = "day"
	UnitWeek  RepeatUnit = "week"
	UnitMonth RepeatUnit = "month"
)

// RepeatDetail parameterizes custom plans. It is stored but never computed against.
type RepeatDetail struct {
	Interval int        `json:"interval"`
	Unit     RepeatUnit `json:"unit"`
}

// Plan is a recurring goal with a target number of repetitions per period.
type Plan struct {
	ID           string        `gorm:"primaryKey"`
	UserID       uint          `gorm:"index"`
	CategoryID   string        `gorm:"index"`
	Title        string
	RepeatType   RepeatType
	RepeatDetail *RepeatDetail `gorm:"serializer:json"`
	TargetCount  int
	StartDate    datekey.Key
	EndDate      datekey.Key // empty means unbounded
	CreatedAt    datekey.Key
	UpdatedAt    time.Time
}

// HasEnd reports whether the plan has an inclusive end date.
func (p Plan) HasEnd() bool {
	return p.EndDate != ""
}

// Validate enforces the plan invariants.
func (p Plan) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("plan", "title", "is required")
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		return invalid("plan", "categoryId", "is required")
	}
	if !p.RepeatType.Valid() {
		return invalid("plan", "repeatType", "must be one of daily, weekly, monthly, custom")
	}
	if p.TargetCount < 1 {
		return invalid("plan", "targetCount", "must be at least 1")
	}
	if !p.StartDate.Valid() {
		return invalid("plan", "startDate", "must be a YYYY-MM-DD date")
	}
	if p.HasEnd() {
		if !p.EndDate.Valid() {
			return invalid("plan", "endDate", "must be a YYYY-MM-DD date")
		}
		if p.EndDate < p.StartDate {
			return invalid("plan", "endDate", "must not be before startDate")
		}
	}
	switch {
	case p.RepeatType == RepeatCustom && p.RepeatDetail == nil:
		return invalid("plan", "repeatDetail", "is required for custom plans")
	case p.RepeatType != RepeatCustom && p.RepeatDetail != nil:
		return invalid("plan", "repeatDetail", "is only allowed for custom plans")
	case p.RepeatDetail != nil:
		if p.RepeatDetail.Interval < 1 {
			return invalid("plan", "repeatDetail.interval", "must be at least 1")
		}
		switch p.RepeatDetail.Unit {
		case UnitDay, UnitWeek, UnitMonth:
		default:
			return invalid("plan", "repeatDetail.unit", "must be one of day, week, month")
		}
	}
	return nil
}
