package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	ReportTime     string
	ReportInterval time.Duration
	StrictWeeks    bool
}

// Load reads configuration from environment variables, optionally layered
// over a YAML file named by CONFIG_FILE. Environment variables win.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("database_url", "plan_tracker.db")
	v.SetDefault("report_time", "08:00")
	v.SetDefault("report_interval_hours", "")
	v.SetDefault("strict_weeks", false)
	v.SetDefault("telegram_token", "")
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(v.GetString("telegram_token")),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		ReportTime:     strings.TrimSpace(v.GetString("report_time")),
		ReportInterval: parseInterval(strings.TrimSpace(v.GetString("report_interval_hours"))),
		StrictWeeks:    v.GetBool("strict_weeks"),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "plan_tracker.db"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
