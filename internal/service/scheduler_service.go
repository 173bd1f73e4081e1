package service

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the summary jobs. Times are interpreted in the
// location passed to NewSchedulerService, normally datekey.Location.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	logger := cron.PrintfLogger(log.Default())
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// ScheduleReports registers job at the daily HH:MM time and, when interval is
// positive, every interval on top of it. It returns how many entries were added.
func (s *SchedulerService) ScheduleReports(dailyAt string, interval time.Duration, job func()) (int, error) {
	added := 0
	if dailyAt != "" {
		if _, err := s.ScheduleDaily(dailyAt, job); err != nil {
			return added, err
		}
		added++
	}
	if interval > 0 {
		if _, err := s.ScheduleInterval(interval, job); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// ScheduleDaily registers a job at the given HH:MM wall-clock time.
func (s *SchedulerService) ScheduleDaily(timeStr string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers a periodic job.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	return s.cron.AddFunc(intervalSpec(interval), job)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

func (s *SchedulerService) Entries() int {
	return len(s.cron.Entries())
}

func intervalSpec(interval time.Duration) string {
	return fmt.Sprintf("@every %ds", max(int(interval.Seconds()), 1))
}

// buildDailySpec turns HH:MM into a six-field cron spec (seconds first).
func buildDailySpec(timeStr string) (string, error) {
	at, err := time.Parse("15:04", timeStr)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM: %w", timeStr, err)
	}
	return fmt.Sprintf("0 %d %d * * *", at.Minute(), at.Hour()), nil
}
