package bot

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
	"plan-tracker/internal/tracker"
)

const (
	iconChecked     = "✅"
	iconUnchecked   = "⬜"
	iconCellSuccess = "🟩"
	iconCellFail    = "🟥"
	iconCellNone    = "⬜"
	iconCellOut     = "▫️"
	iconCellBlank   = "➖"
	noCategory      = "Без категории"
	slotsPerRow     = 5
)

var weekdayHeader = []string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

type view struct {
	text   string
	markup tgbotapi.InlineKeyboardMarkup
}

func cadenceTitle(cadence model.RepeatType) string {
	switch cadence {
	case model.RepeatDaily:
		return "Ежедневно"
	case model.RepeatWeekly:
		return "Еженедельно"
	case model.RepeatMonthly:
		return "Ежемесячно"
	default:
		return "Другие"
	}
}

func todaySectionTitle(cadence model.RepeatType) string {
	switch cadence {
	case model.RepeatWeekly:
		return "📅 <b>До конца недели</b>"
	case model.RepeatMonthly:
		return "🗓 <b>До конца месяца</b>"
	default:
		return "☀️ <b>Сегодня</b>"
	}
}

// renderToday shows every plan due today in three cadence sections. Each
// section lists all categories, including empty ones.
func renderToday(snap *tracker.Snapshot, today datekey.Key) (view, error) {
	due := snap.DueOn(today)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Планы на %s</b>\n", today.Time().Format("02.01.2006")))

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, cadence := range model.Cadences {
		plans := tracker.ByCadence(due, cadence)
		builder.WriteString("\n" + todaySectionTitle(cadence) + "\n")
		if len(snap.Categories) == 0 && len(plans) == 0 {
			builder.WriteString("— нет планов\n")
			continue
		}
		for _, group := range tracker.GroupByCategory(plans, snap.Categories, true) {
			builder.WriteString(categoryLabel(group.Category.Name) + "\n")
			if len(group.Plans) == 0 {
				builder.WriteString("   —\n")
			}
			for _, plan := range group.Plans {
				if err := writePlan(&builder, &rows, snap, plan, today, cbTodayPrefix, cadence != model.RepeatDaily); err != nil {
					return view{}, err
				}
			}
		}
		if orphans := tracker.Uncategorized(plans, snap.Categories); len(orphans) > 0 {
			builder.WriteString(categoryLabel(noCategory) + "\n")
			for _, plan := range orphans {
				if err := writePlan(&builder, &rows, snap, plan, today, cbTodayPrefix, cadence != model.RepeatDaily); err != nil {
					return view{}, err
				}
			}
		}
	}

	return view{text: strings.TrimSpace(builder.String()), markup: inlineMarkup(rows)}, nil
}

// renderDay shows plans active on date grouped by category, skipping
// categories without plans. Slot buttons write to date.
func renderDay(snap *tracker.Snapshot, date datekey.Key) (view, error) {
	due := snap.DueOn(date)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📆 <b>%s</b>\n", date.Time().Format("02.01.2006")))

	var rows [][]tgbotapi.InlineKeyboardButton
	groups := tracker.GroupByCategory(due, snap.Categories, false)
	orphans := tracker.Uncategorized(due, snap.Categories)
	if len(groups) == 0 && len(orphans) == 0 {
		builder.WriteString("\nНа этот день планов нет.")
		return view{text: builder.String(), markup: inlineMarkup(nil)}, nil
	}
	for _, group := range groups {
		builder.WriteString("\n" + categoryLabel(group.Category.Name) + "\n")
		for _, plan := range group.Plans {
			if err := writePlan(&builder, &rows, snap, plan, date, cbDayPrefix, false); err != nil {
				return view{}, err
			}
		}
	}
	if len(orphans) > 0 {
		builder.WriteString("\n" + categoryLabel(noCategory) + "\n")
		for _, plan := range orphans {
			if err := writePlan(&builder, &rows, snap, plan, date, cbDayPrefix, false); err != nil {
				return view{}, err
			}
		}
	}

	return view{text: strings.TrimSpace(builder.String()), markup: inlineMarkup(rows)}, nil
}

// renderPlans lists all plans by cadence with today's calendar state and a
// calendar button per plan.
func renderPlans(snap *tracker.Snapshot, today datekey.Key, opts tracker.ClassifyOptions) (view, error) {
	if len(snap.Plans) == 0 {
		return view{text: "Планов пока нет. Добавь первый через /newplan.", markup: inlineMarkup(nil)}, nil
	}

	month := datekey.MonthKey(today)
	var builder strings.Builder
	builder.WriteString("🗂 <b>Все планы</b>\n")

	var rows [][]tgbotapi.InlineKeyboardButton
	cadences := append(append([]model.RepeatType{}, model.Cadences...), model.RepeatCustom)
	for _, cadence := range cadences {
		plans := tracker.ByCadence(snap.Plans, cadence)
		if len(plans) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("\n<b>%s</b>\n", cadenceTitle(cadence)))
		for _, plan := range plans {
			category := snap.CategoryName(plan.CategoryID)
			if category == "" {
				category = noCategory
			}
			if cadence == model.RepeatCustom {
				builder.WriteString(fmt.Sprintf("• %s <i>(%s)</i> · %s\n", escape(normalizeTitle(plan.Title)), escape(category), planPeriod(plan)))
				continue
			}
			state, err := snap.Classify(plan.ID, today, opts)
			if err != nil {
				return view{}, err
			}
			icon := cellIcon(tracker.Cell{Date: today, InMonth: true, State: state})
			builder.WriteString(fmt.Sprintf("• %s %s <i>(%s)</i> · %s\n", icon, escape(normalizeTitle(plan.Title)), escape(category), planPeriod(plan)))
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📅 "+shortTitle(plan.Title, 28), calendarData(plan.ID, month)),
			))
		}
	}

	return view{text: strings.TrimSpace(builder.String()), markup: inlineMarkup(rows)}, nil
}

// renderPlanCalendar classifies month for planID and draws it. Unknown plans
// yield a *model.NotFoundError.
func renderPlanCalendar(snap *tracker.Snapshot, planID, month string, opts tracker.ClassifyOptions) (view, error) {
	plan, err := snap.Plan(planID)
	if err != nil {
		return view{}, err
	}
	cells, err := snap.ClassifyMonth(planID, month, opts)
	if err != nil {
		return view{}, err
	}
	return renderCalendar(plan, cells, month), nil
}

// renderCalendar draws the month heat-map of one plan with navigation buttons.
func renderCalendar(plan model.Plan, cells []tracker.Cell, month string) view {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📅 <b>%s</b> · %s\n", escape(normalizeTitle(plan.Title)), month))
	builder.WriteString(fmt.Sprintf("<i>%s, цель %d</i>\n\n", strings.ToLower(cadenceTitle(plan.RepeatType)), plan.TargetCount))
	builder.WriteString(strings.Join(weekdayHeader, " ") + "\n")

	for i, cell := range cells {
		builder.WriteString(cellIcon(cell))
		if i%7 == 6 {
			builder.WriteByte('\n')
		} else {
			builder.WriteByte(' ')
		}
	}
	builder.WriteString(fmt.Sprintf("\n%s выполнено  %s не выполнено  %s нет данных", iconCellSuccess, iconCellFail, iconCellNone))

	nav := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀ "+datekey.ShiftMonth(month, -1), calendarData(plan.ID, datekey.ShiftMonth(month, -1))),
		tgbotapi.NewInlineKeyboardButtonData(datekey.ShiftMonth(month, 1)+" ▶", calendarData(plan.ID, datekey.ShiftMonth(month, 1))),
	)
	return view{text: builder.String(), markup: tgbotapi.NewInlineKeyboardMarkup(nav)}
}

func cellIcon(cell tracker.Cell) string {
	if !cell.InMonth {
		return iconCellOut
	}
	switch cell.State {
	case tracker.CellSuccess:
		return iconCellSuccess
	case tracker.CellFail:
		return iconCellFail
	case tracker.CellNone:
		return iconCellNone
	default:
		return iconCellBlank
	}
}

// writePlan appends the plan's progress line and its slot buttons.
func writePlan(builder *strings.Builder, rows *[][]tgbotapi.InlineKeyboardButton, snap *tracker.Snapshot, plan model.Plan, date datekey.Key, prefix string, withPeriod bool) error {
	line, err := formatPlanLine(snap, plan, date, withPeriod)
	if err != nil {
		return err
	}
	slots, err := slotRows(snap, plan, date, prefix)
	if err != nil {
		return err
	}
	builder.WriteString(line)
	*rows = append(*rows, slots...)
	return nil
}

func formatPlanLine(snap *tracker.Snapshot, plan model.Plan, date datekey.Key, withPeriod bool) (string, error) {
	progress, err := snap.Progress(plan.ID, date)
	if err != nil {
		return "", err
	}
	title := escape(normalizeTitle(plan.Title))
	if progress.Done() {
		title = "<s>" + title + "</s> (готово!)"
	}
	line := fmt.Sprintf("   %s %s — <b>%d / %d</b>", progressIcon(progress), title, progress.Completed, progress.Total)
	if withPeriod {
		period, err := snap.PeriodProgress(plan.ID, date)
		if err != nil {
			return "", err
		}
		line += fmt.Sprintf(" · за период %d / %d", period.Completed, period.Total)
	}
	return line + "\n", nil
}

func progressIcon(p tracker.Progress) string {
	if p.Done() {
		return iconChecked
	}
	return "▫️"
}

// slotRows renders one checkbox button per repetition. Completed plans stay
// clickable so extra repetitions can still be recorded.
func slotRows(snap *tracker.Snapshot, plan model.Plan, date datekey.Key, prefix string) ([][]tgbotapi.InlineKeyboardButton, error) {
	vector, err := snap.Vector(plan.ID, date)
	if err != nil {
		return nil, err
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		{tgbotapi.NewInlineKeyboardButtonData(shortTitle(plan.Title, 24), cbNoop)},
	}
	var row []tgbotapi.InlineKeyboardButton
	for i, checked := range vector {
		icon := iconUnchecked
		if checked {
			icon = iconChecked
		}
		label := fmt.Sprintf("%s %d", icon, i+1)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, toggleData(prefix, plan.ID, i, date, !checked)))
		if len(row) == slotsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows, nil
}

func planPeriod(plan model.Plan) string {
	target := fmt.Sprintf("×%d", plan.TargetCount)
	if plan.RepeatDetail != nil {
		target += fmt.Sprintf(", каждые %d %s", plan.RepeatDetail.Interval, plan.RepeatDetail.Unit)
	}
	if plan.HasEnd() {
		return fmt.Sprintf("%s, %s — %s", target, plan.StartDate, plan.EndDate)
	}
	return fmt.Sprintf("%s, с %s", target, plan.StartDate)
}

func inlineMarkup(rows [][]tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	if rows == nil {
		rows = [][]tgbotapi.InlineKeyboardButton{}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func categoryLabel(name string) string {
	base := strings.TrimSpace(name)
	var icon string
	switch model.CategorySlug(base) {
	case "work":
		icon = "💼"
	case "study":
		icon = "🎓"
	case "health", "sport":
		icon = "🩺"
	case "":
		icon = "📁"
	default:
		icon = "🏷️"
	}
	if base == "" {
		base = noCategory
	}
	return fmt.Sprintf("%s <b>%s</b>", icon, escape(normalizeTitle(base)))
}
