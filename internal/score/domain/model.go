package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	milestonedomain "github.com/smallbiznis/streakscore/internal/milestone/domain"
	"gorm.io/datatypes"
)

type RecordType string

const (
	RecordTypeRecord  RecordType = "record"
	RecordTypeCheckin RecordType = "checkin"
)

func (r RecordType) Valid() bool {
	return r == RecordTypeRecord || r == RecordTypeCheckin
}

// DailyScore is written once per (user, day) and never recomputed.
type DailyScore struct {
	ID            snowflake.ID   `json:"id" gorm:"primaryKey"`
	UserID        string         `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_daily_scores_user_day,priority:1"`
	Day           time.Time      `json:"day" gorm:"type:date;not null;uniqueIndex:ux_daily_scores_user_day,priority:2;index:idx_daily_scores_day"`
	BaseScore     int            `json:"base_score" gorm:"not null"`
	StreakScore   int            `json:"streak_score" gorm:"not null"`
	BonusScore    int            `json:"bonus_score" gorm:"not null"`
	TotalScore    int            `json:"total_score" gorm:"not null"`
	CurrentStreak int            `json:"current_streak" gorm:"not null"`
	RecordType    RecordType     `json:"record_type" gorm:"type:varchar(16);not null"`
	BonusDetails  datatypes.JSON `json:"bonus_details" gorm:"type:json"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null"`
}

func (DailyScore) TableName() string { return "daily_scores" }

func (d DailyScore) Details() ([]milestonedomain.BonusDetail, error) {
	details := []milestonedomain.BonusDetail{}
	if len(d.BonusDetails) == 0 {
		return details, nil
	}
	if err := json.Unmarshal(d.BonusDetails, &details); err != nil {
		return nil, err
	}
	return details, nil
}
