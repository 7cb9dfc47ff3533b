package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const defaultLeaderboardLimit = 15

// MilestoneDefault seeds milestone_configs when the table is empty.
type MilestoneDefault struct {
	StreakDays int    `mapstructure:"streakDays"`
	BonusScore int    `mapstructure:"bonusScore"`
	Name       string `mapstructure:"name"`
}

type ScoringConfig struct {
	Milestones       []MilestoneDefault `mapstructure:"milestones"`
	LeaderboardLimit int                `mapstructure:"leaderboardLimit"`
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Milestones: []MilestoneDefault{
			{StreakDays: 3, BonusScore: 1, Name: "3-day streak"},
			{StreakDays: 7, BonusScore: 3, Name: "7-day streak"},
			{StreakDays: 10, BonusScore: 5, Name: "10-day streak"},
			{StreakDays: 30, BonusScore: 10, Name: "30-day streak"},
		},
		LeaderboardLimit: defaultLeaderboardLimit,
	}
}

type ScoringConfigHolder struct {
	current atomic.Value // holds ScoringConfig
	log     *zap.Logger
}

// NewScoringConfigHolder reads scoring.yml and keeps watching it for changes.
func NewScoringConfigHolder(log *zap.Logger) (*ScoringConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("scoring")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/streakscore/config")
	v.AddConfigPath("/etc/streakscore")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STREAKSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return loadScoringConfig(v, true, log)
}

// NewStaticScoringConfigHolder returns a holder that never reloads.
func NewStaticScoringConfigHolder(cfg ScoringConfig) *ScoringConfigHolder {
	holder := &ScoringConfigHolder{log: zap.NewNop()}
	holder.current.Store(normalizeScoringConfig(cfg))
	return holder
}

func loadScoringConfig(v *viper.Viper, watch bool, log *zap.Logger) (*ScoringConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	defaults := DefaultScoringConfig()
	v.SetDefault("scoring.milestones", defaults.Milestones)
	v.SetDefault("scoring.leaderboardLimit", defaults.LeaderboardLimit)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	var cfg ScoringConfig
	if err := v.UnmarshalKey("scoring", &cfg); err != nil {
		return nil, err
	}
	if err := validateScoringConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ScoringConfigHolder{log: log.Named("scoring.config")}
	holder.current.Store(normalizeScoringConfig(cfg))

	if watch && found {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.reload(v, e.Name)
		})
	}

	return holder, nil
}

// reload swaps in the config currently held by v. An unreadable or invalid
// config is logged and the previous one stays active.
func (h *ScoringConfigHolder) reload(v *viper.Viper, source string) {
	var updated ScoringConfig
	if err := v.UnmarshalKey("scoring", &updated); err != nil {
		h.log.Error("scoring config reload failed", zap.String("source", source), zap.Error(err))
		return
	}
	if err := validateScoringConfig(updated); err != nil {
		h.log.Warn("invalid scoring config ignored", zap.String("source", source), zap.Error(err))
		return
	}
	h.current.Store(normalizeScoringConfig(updated))
	h.log.Info("scoring config reloaded", zap.String("source", source))
}

func (h *ScoringConfigHolder) Get() ScoringConfig {
	if h == nil {
		return DefaultScoringConfig()
	}
	cfg, ok := h.current.Load().(ScoringConfig)
	if !ok {
		return DefaultScoringConfig()
	}
	return cfg
}

func normalizeScoringConfig(cfg ScoringConfig) ScoringConfig {
	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = defaultLeaderboardLimit
	}
	milestones := make([]MilestoneDefault, len(cfg.Milestones))
	copy(milestones, cfg.Milestones)
	sort.SliceStable(milestones, func(i, j int) bool {
		return milestones[i].StreakDays < milestones[j].StreakDays
	})
	cfg.Milestones = milestones
	return cfg
}

func validateScoringConfig(cfg ScoringConfig) error {
	if cfg.LeaderboardLimit < 0 {
		return errors.New("scoring.leaderboardLimit cannot be negative")
	}
	for i, m := range cfg.Milestones {
		if m.StreakDays <= 0 {
			return fmt.Errorf("scoring.milestones[%d].streakDays must be positive", i)
		}
		if m.BonusScore < 0 {
			return fmt.Errorf("scoring.milestones[%d].bonusScore cannot be negative", i)
		}
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("scoring.milestones[%d].name is required", i)
		}
	}
	return nil
}
