package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
	"plan-tracker/internal/tracker"
)

// ReminderService builds human-readable summaries for periodic notifications.
type ReminderService struct {
	trackerSvc *TrackerService
}

func NewReminderService(trackerSvc *TrackerService) *ReminderService {
	return &ReminderService{trackerSvc: trackerSvc}
}

// DailySummary lists the plans due today by cadence. Daily plans report
// today's slots; weekly and monthly plans report the whole current period.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	snap, err := s.trackerSvc.Snapshot(ctx, &user)
	if err != nil {
		return "", err
	}
	return BuildSummary(snap, datekey.Normalize(now)), nil
}

// BuildSummary renders the summary for an already loaded snapshot.
func BuildSummary(snap *tracker.Snapshot, today datekey.Key) string {
	due := snap.DueOn(today)

	var builder strings.Builder
	builder.WriteString("📋 <b>Сводка по планам</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", today.Time().Format("02.01.2006")))

	pending := 0
	for _, cadence := range model.Cadences {
		plans := tracker.ByCadence(due, cadence)
		from, to := tracker.PeriodWindow(cadence, today)

		builder.WriteString(fmt.Sprintf("\n%s\n", cadenceHeader(cadence, from, to)))
		if len(plans) == 0 {
			builder.WriteString("— нет планов\n")
			continue
		}
		for _, plan := range plans {
			progress, err := snap.PeriodProgress(plan.ID, today)
			if err != nil {
				continue
			}
			if !progress.Done() {
				pending++
			}
			builder.WriteString(formatSummaryLine(plan, progress, snap.CategoryName(plan.CategoryID)))
		}
	}

	builder.WriteByte('\n')
	if pending == 0 {
		builder.WriteString("🎉 Все планы на сегодня выполнены!")
	} else {
		builder.WriteString(fmt.Sprintf("🔥 Осталось выполнить: %d", pending))
	}
	return builder.String()
}

func cadenceHeader(cadence model.RepeatType, from, to datekey.Key) string {
	switch cadence {
	case model.RepeatWeekly:
		return fmt.Sprintf("📅 <b>На этой неделе</b> <i>(%s — %s)</i>", from.Time().Format("02.01"), to.Time().Format("02.01"))
	case model.RepeatMonthly:
		return fmt.Sprintf("🗓 <b>В этом месяце</b> <i>(%s)</i>", datekey.MonthKey(from))
	default:
		return "☀️ <b>Сегодня</b>"
	}
}

func formatSummaryLine(plan model.Plan, progress tracker.Progress, categoryName string) string {
	icon := "⬜"
	if progress.Done() {
		icon = "✅"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(plan.Title))))
	if name := strings.TrimSpace(categoryName); name != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
	}
	sb.WriteString(fmt.Sprintf(" — %d/%d\n", progress.Completed, progress.Total))
	return sb.String()
}
