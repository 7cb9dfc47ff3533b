package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type BranchScoreDaily struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	BranchCode    string          `json:"branch_code" gorm:"type:varchar(64);not null;uniqueIndex:ux_branch_scores_daily_branch_day,priority:1"`
	Day           time.Time       `json:"day" gorm:"type:date;not null;uniqueIndex:ux_branch_scores_daily_branch_day,priority:2;index:idx_branch_scores_daily_day"`
	TotalMembers  int             `json:"total_members" gorm:"not null"`
	ActiveMembers int             `json:"active_members" gorm:"not null"`
	TotalScore    int             `json:"total_score" gorm:"not null"`
	AvgScore      decimal.Decimal `json:"avg_score" gorm:"type:decimal(10,2);not null"`
	Rank          int             `json:"rank" gorm:"column:branch_rank;not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null"`
}

func (BranchScoreDaily) TableName() string { return "branch_scores_daily" }
