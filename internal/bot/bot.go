package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"plan-tracker/internal/config"
	"plan-tracker/internal/datekey"
	"plan-tracker/internal/model"
	"plan-tracker/internal/repository"
	"plan-tracker/internal/service"
	"plan-tracker/internal/tracker"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageCategory
	stageRepeat
	stageTarget
	stageStartDate
	stageEndDate
)

const (
	btnSkip             = "⏭️ Пропустить"
	btnCancelDialog     = "⏪ Отменить ввод"
	menuLabelToday      = "☀️ Сегодня"
	menuLabelPlans      = "🗂 Все планы"
	menuLabelNewPlan    = "➕ Новый план"
	menuLabelCategories = "📂 Категории"
	menuLabelHelp       = "ℹ️ Помощь"
)

type conversationState struct {
	stage conversationStage
	input service.PlanInput
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	categorySvc   *service.CategoryService
	planSvc       *service.PlanService
	checkSvc      *service.CheckService
	trackerSvc    *service.TrackerService
	reminderSvc   *service.ReminderService
	config        *config.Config
	conversations map[int64]*conversationState
	mu            sync.Mutex
}

// Services bundles the collaborators the bot talks to.
type Services struct {
	Users      *repository.UserRepository
	Categories *service.CategoryService
	Plans      *service.PlanService
	Checks     *service.CheckService
	Tracker    *service.TrackerService
	Reminders  *service.ReminderService
}

func New(token string, svc Services, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      svc.Users,
		categorySvc:   svc.Categories,
		planSvc:       svc.Plans,
		checkSvc:      svc.Checks,
		trackerSvc:    svc.Tracker,
		reminderSvc:   svc.Reminders,
		config:        cfg,
		conversations: make(map[int64]*conversationState),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Создание плана отменено.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	return b.sendText(msg.Chat.ID, "Не понял сообщение. Набери /today, чтобы отметить планы, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "today":
		return b.handleToday(ctx, msg)
	case "day":
		return b.handleDay(ctx, msg)
	case "plans":
		return b.handlePlans(ctx, msg)
	case "newplan":
		return b.startNewPlanConversation(ctx, msg)
	case "category":
		return b.handleAddCategory(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Создание плана отменено.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	name := user.DisplayName()
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я помогу держать регулярные планы: отмечай повторения каждый день и смотри прогресс в календаре.</b>\n\n%s",
		escape(name), commandList(),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Подсказки</b>\n"+commandList())
}

func commandList() string {
	return "• /today — планы на сегодня с отметками\n" +
		"• /day &lt;ГГГГ-ММ-ДД&gt; — планы на выбранный день (можно отметить задним числом)\n" +
		"• /plans — все планы и календарь выполнения\n" +
		"• /newplan — добавить план пошагово\n" +
		"• /category &lt;название&gt; — добавить категорию\n" +
		"• /categories — список категорий\n" +
		"• /report — сводка прогресса\n" +
		"• /cancel — отменить текущий ввод"
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	snap, err := b.trackerSvc.Snapshot(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось загрузить планы: %s", escape(err.Error())))
	}
	v, err := renderToday(snap, datekey.Today())
	if err != nil {
		return err
	}
	return b.sendView(msg.Chat.ID, v)
}

func (b *Bot) handleDay(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	date := datekey.Today()
	if args != "" {
		parsed, err := datekey.Parse(args)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Укажи дату в формате <code>2025-11-30</code>: /day 2025-11-30")
		}
		date = parsed
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	snap, err := b.trackerSvc.Snapshot(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось загрузить планы: %s", escape(err.Error())))
	}
	v, err := renderDay(snap, date)
	if err != nil {
		return err
	}
	return b.sendView(msg.Chat.ID, v)
}

func (b *Bot) handlePlans(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	snap, err := b.trackerSvc.Snapshot(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось загрузить планы: %s", escape(err.Error())))
	}
	log.Printf("[info] list plans for user=%d count=%d", user.ID, len(snap.Plans))
	v, err := renderPlans(snap, datekey.Today(), tracker.ClassifyOptions{StrictWeeks: b.config.StrictWeeks})
	if err != nil {
		return err
	}
	return b.sendView(msg.Chat.ID, v)
}

func (b *Bot) handleAddCategory(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Укажи название: /category Health")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	category, err := b.categorySvc.Create(ctx, user, name)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			return b.sendText(msg.Chat.ID, "Название категории должно содержать латинские буквы или цифры.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сохранить категорию: %s", escape(err.Error())))
	}
	log.Printf("[info] category saved id=%s user=%d", category.ID, user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📂 Категория %s сохранена (id <code>%s</code>).", categoryLabel(category.Name), escape(category.ID)))
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось получить категории: %s", escape(err.Error())))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "Категорий пока нет. Добавь первую: /category Health")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Категории</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s <code>%s</code>\n", categoryLabel(cat.Name), escape(cat.ID)))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminderSvc.DailySummary(ctx, *user, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сформировать сводку: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) startNewPlanConversation(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.categorySvc.List(ctx, user)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "Сначала добавь категорию: /category Health")
	}
	log.Printf("[info] start new plan conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новый план.\n<b>Шаг 1:</b> как его назвать?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым.", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageCategory
		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		categories, err := b.categorySvc.List(ctx, user)
		if err != nil {
			return err
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 <b>Шаг 2:</b> выбери категорию.", categoryKeyboard(categories))
	case stageCategory:
		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		categories, err := b.categorySvc.List(ctx, user)
		if err != nil {
			return err
		}
		id, ok := matchCategory(text, categories)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Такой категории нет. Выбери из списка или добавь через /category.", categoryKeyboard(categories))
		}
		state.input.CategoryID = id
		state.stage = stageRepeat
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 <b>Шаг 3:</b> как часто повторять?", repeatKeyboard())
	case stageRepeat:
		repeat, ok := model.ParseRepeatType(text)
		if !ok || repeat == model.RepeatCustom {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери: ежедневно, еженедельно или ежемесячно.", repeatKeyboard())
		}
		state.input.RepeatType = repeat
		state.stage = stageTarget
		return b.sendWithReplyMarkup(msg.Chat.ID, "🎯 <b>Шаг 4:</b> сколько раз за период? (например, 3)", cancelKeyboard())
	case stageTarget:
		target, err := strconv.Atoi(text)
		if err != nil || target < 1 || target > 20 {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Нужно число от 1 до 20.", cancelKeyboard())
		}
		state.input.TargetCount = target
		state.stage = stageStartDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📆 <b>Шаг 5:</b> дата начала в формате <code>2025-11-30</code> («Пропустить» — сегодня).", skipKeyboard())
	case stageStartDate:
		if !isSkipInput(text) {
			date, err := datekey.Parse(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2025-11-30</code> или «Пропустить».", skipKeyboard())
			}
			state.input.StartDate = date
		}
		state.stage = stageEndDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏁 <b>Шаг 6:</b> дата окончания включительно (или «Пропустить», чтобы без срока).", skipKeyboard())
	case stageEndDate:
		if !isSkipInput(text) {
			date, err := datekey.Parse(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2025-11-30</code> или «Пропустить».", skipKeyboard())
			}
			state.input.EndDate = date
		}
		err := b.finishPlanCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /newplan.")
	}
}

func (b *Bot) finishPlanCreation(ctx context.Context, from *tgbotapi.User, input service.PlanInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	plan, err := b.planSvc.Create(ctx, user, input)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return b.sendText(chatID, fmt.Sprintf("План не сохранён: %s", escape(verr.Error())))
		}
		return b.sendText(chatID, fmt.Sprintf("Не удалось сохранить план: %s", escape(err.Error())))
	}

	log.Printf("[info] plan created id=%s user=%d repeat=%s target=%d", plan.ID, user.ID, plan.RepeatType, plan.TargetCount)

	var summary strings.Builder
	summary.WriteString("✅ <b>План сохранён</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(normalizeTitle(plan.Title))))
	summary.WriteString(fmt.Sprintf("• <b>Повтор:</b> %s, %d раз\n", strings.ToLower(cadenceTitle(plan.RepeatType)), plan.TargetCount))
	summary.WriteString(fmt.Sprintf("• <b>Начало:</b> %s\n", plan.StartDate))
	if plan.HasEnd() {
		summary.WriteString(fmt.Sprintf("• <b>Окончание:</b> %s\n", plan.EndDate))
	}
	return b.sendText(chatID, strings.TrimSpace(summary.String()))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbTodayPrefix), strings.HasPrefix(data, cbDayPrefix):
		req, err := parseToggle(data)
		if err != nil {
			log.Printf("[info] bad toggle callback user=%d: %v", cb.From.ID, err)
			return nil
		}
		return b.toggleAndRefresh(ctx, cb, req)
	case strings.HasPrefix(data, cbCalendarPrefix):
		req, err := parseCalendar(data)
		if err != nil {
			log.Printf("[info] bad calendar callback user=%d: %v", cb.From.ID, err)
			return nil
		}
		return b.showCalendar(ctx, cb, req)
	default:
		return nil
	}
}

func (b *Bot) toggleAndRefresh(ctx context.Context, cb *tgbotapi.CallbackQuery, req toggleRequest) error {
	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		return err
	}

	log.Printf("[info] toggle plan=%s slot=%d date=%s checked=%t user=%d", req.planID, req.slot, req.date, req.checked, user.ID)
	if err := b.checkSvc.Toggle(ctx, user, req.planID, req.slot, req.checked, req.date); err != nil {
		if errors.Is(err, model.ErrPlanNotFound) {
			return b.sendText(cb.Message.Chat.ID, "План не найден.")
		}
		return b.sendText(cb.Message.Chat.ID, fmt.Sprintf("Не удалось сохранить отметку: %s", escape(err.Error())))
	}

	snap, err := b.trackerSvc.Snapshot(ctx, user)
	if err != nil {
		return err
	}
	render := renderDay
	if req.prefix == cbTodayPrefix {
		render = renderToday
	}
	v, err := render(snap, req.date)
	if err != nil {
		return err
	}
	return b.editView(cb.Message.Chat.ID, cb.Message.MessageID, v)
}

func (b *Bot) showCalendar(ctx context.Context, cb *tgbotapi.CallbackQuery, req calendarRequest) error {
	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		return err
	}
	snap, err := b.trackerSvc.Snapshot(ctx, user)
	if err != nil {
		return err
	}
	v, err := renderPlanCalendar(snap, req.planID, req.month, tracker.ClassifyOptions{StrictWeeks: b.config.StrictWeeks})
	if errors.Is(err, model.ErrPlanNotFound) {
		return b.sendText(cb.Message.Chat.ID, "План не найден.")
	}
	if err != nil {
		return err
	}

	// The plan list message stays; calendar navigation edits the calendar in place.
	if strings.HasPrefix(cb.Message.Text, "📅") {
		return b.editView(cb.Message.Chat.ID, cb.Message.MessageID, v)
	}
	return b.sendView(cb.Message.Chat.ID, v)
}

// SendDailyReports sends a summary to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminderSvc.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send summary to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelToday):
		return true, b.handleToday(ctx, msg)
	case strings.ToLower(menuLabelPlans):
		return true, b.handlePlans(ctx, msg)
	case strings.ToLower(menuLabelNewPlan):
		return true, b.startNewPlanConversation(ctx, msg)
	case strings.ToLower(menuLabelCategories):
		return true, b.handleCategories(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendView(chatID int64, v view) error {
	msg := tgbotapi.NewMessage(chatID, v.text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(v.markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = v.markup
	} else {
		msg.ReplyMarkup = mainMenuKeyboard()
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) editView(chatID int64, messageID int, v view) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, v.text, v.markup)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(edit); err != nil && !isNotModified(err) {
		return err
	}
	return nil
}

// isNotModified matches Telegram's rejection of an edit that leaves text and
// keyboard unchanged, e.g. after a repeated tap on a stale button.
func isNotModified(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	return strings.Contains(strings.ToLower(msg), "message is not modified")
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// matchCategory resolves user input to a category id by slug or display name.
func matchCategory(text string, categories []model.Category) (string, bool) {
	slug := model.CategorySlug(text)
	for _, cat := range categories {
		if cat.ID == slug || strings.EqualFold(strings.TrimSpace(cat.Name), strings.TrimSpace(text)) {
			return cat.ID, true
		}
	}
	return "", false
}
