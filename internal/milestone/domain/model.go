package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type MilestoneConfig struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	StreakDays int          `json:"streak_days" gorm:"not null;index:idx_milestone_configs_streak_days"`
	BonusScore int          `json:"bonus_score" gorm:"not null"`
	Name       string       `json:"name" gorm:"type:text;not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null"`
}

func (MilestoneConfig) TableName() string { return "milestone_configs" }

type BonusDetail struct {
	Milestone int    `json:"milestone"`
	Score     int    `json:"score"`
	Name      string `json:"name"`
}

type Bonus struct {
	Score   int           `json:"bonus_score"`
	Details []BonusDetail `json:"bonus_details"`
}
