package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadScoringConfigDefaultsWhenFileMissing(t *testing.T) {
	v := viper.New()
	v.SetConfigName("scoring")
	v.SetConfigType("yml")
	v.AddConfigPath(t.TempDir())

	holder, err := loadScoringConfig(v, false, nil)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, defaultLeaderboardLimit, cfg.LeaderboardLimit)
	require.Len(t, cfg.Milestones, len(DefaultScoringConfig().Milestones))
	assert.Equal(t, 3, cfg.Milestones[0].StreakDays)
}

func TestLoadScoringConfigFromFileSortsMilestones(t *testing.T) {
	dir := t.TempDir()
	body := `scoring:
  leaderboardLimit: 20
  milestones:
    - streakDays: 10
      bonusScore: 5
      name: ten
    - streakDays: 5
      bonusScore: 2
      name: five
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scoring.yml"), []byte(body), 0o600))

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "scoring.yml"))

	holder, err := loadScoringConfig(v, false, nil)
	require.NoError(t, err)

	cfg := holder.Get()
	assert.Equal(t, 20, cfg.LeaderboardLimit)
	require.Len(t, cfg.Milestones, 2)
	assert.Equal(t, 5, cfg.Milestones[0].StreakDays)
	assert.Equal(t, 10, cfg.Milestones[1].StreakDays)
	assert.Equal(t, 5, cfg.Milestones[1].BonusScore)
}

func TestValidateScoringConfigRejectsBadMilestones(t *testing.T) {
	cases := map[string]ScoringConfig{
		"zero streak":    {Milestones: []MilestoneDefault{{StreakDays: 0, BonusScore: 1, Name: "x"}}},
		"negative bonus": {Milestones: []MilestoneDefault{{StreakDays: 3, BonusScore: -1, Name: "x"}}},
		"missing name":   {Milestones: []MilestoneDefault{{StreakDays: 3, BonusScore: 1}}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, validateScoringConfig(cfg))
		})
	}
}

func TestNilHolderFallsBackToDefaults(t *testing.T) {
	var holder *ScoringConfigHolder
	assert.Equal(t, DefaultScoringConfig().LeaderboardLimit, holder.Get().LeaderboardLimit)
}

func TestReloadKeepsPreviousConfigWhenInvalid(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	v := viper.New()
	v.SetConfigName("scoring")
	v.SetConfigType("yml")
	v.AddConfigPath(t.TempDir())

	holder, err := loadScoringConfig(v, false, zap.New(core))
	require.NoError(t, err)

	v.Set("scoring.leaderboardLimit", -1)
	holder.reload(v, "scoring.yml")
	assert.Equal(t, defaultLeaderboardLimit, holder.Get().LeaderboardLimit)
	assert.Equal(t, 1, logs.FilterMessage("invalid scoring config ignored").Len())

	v.Set("scoring.leaderboardLimit", 25)
	holder.reload(v, "scoring.yml")
	assert.Equal(t, 25, holder.Get().LeaderboardLimit)
	entries := logs.FilterMessage("scoring config reloaded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "scoring.yml", entries[0].ContextMap()["source"])
}
