package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/streakscore/internal/config"
)

// Config controls when the daily batch runs and how long it may take.
type Config struct {
	Enabled  bool
	Schedule string
	Timeout  time.Duration
	LockTTL  time.Duration
	Location *time.Location
}

func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Schedule: "15 0 * * *",
		Timeout:  10 * time.Minute,
		LockTTL:  25 * time.Minute,
		Location: time.UTC,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:  cfg.Batch.Enabled,
		Schedule: cfg.Batch.Schedule,
		Timeout:  cfg.Batch.Timeout,
		LockTTL:  cfg.Batch.LockTTL,
		Location: cfg.Location(),
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.Schedule == "" {
		c.Schedule = defaults.Schedule
	}
	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	// a batch runs two steps, each bounded by Timeout
	if c.LockTTL < 2*c.Timeout {
		c.LockTTL = 2 * c.Timeout
	}
	if c.Location == nil {
		c.Location = defaults.Location
	}
	return c
}

func (c Config) validate() error {
	if _, err := cron.ParseStandard(c.Schedule); err != nil {
		return ErrInvalidSchedule
	}
	return nil
}
