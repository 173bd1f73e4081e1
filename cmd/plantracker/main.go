package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plan-tracker/internal/bot"
	"plan-tracker/internal/config"
	"plan-tracker/internal/datekey"
	"plan-tracker/internal/repository"
	"plan-tracker/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	planRepo := repository.NewPlanRepository(db)
	checkRepo := repository.NewCheckRepository(db)

	trackerSvc := service.NewTrackerService(planRepo, categoryRepo, checkRepo)
	services := bot.Services{
		Users:      userRepo,
		Categories: service.NewCategoryService(categoryRepo),
		Plans:      service.NewPlanService(planRepo, categoryRepo),
		Checks:     service.NewCheckService(planRepo, checkRepo),
		Tracker:    trackerSvc,
		Reminders:  service.NewReminderService(trackerSvc),
	}

	telegramBot, err := bot.New(cfg.TelegramToken, services, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	report := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("report: %v", err)
		}
	}

	scheduler := service.NewSchedulerService(datekey.Location)
	jobs, err := scheduler.ScheduleReports(cfg.ReportTime, cfg.ReportInterval, report)
	if err != nil {
		log.Fatalf("schedule reports: %v", err)
	}
	if jobs > 0 {
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Println("Plan tracker bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
