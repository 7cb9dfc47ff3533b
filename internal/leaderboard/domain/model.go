package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type UserRank struct {
	Rank          int    `json:"rank"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	BranchCode    string `json:"branch_code,omitempty"`
	TotalScore    int    `json:"total_score"`
	CurrentStreak int    `json:"current_streak"`
}

// BranchRank is the branch row in the shape existing leaderboard clients read.
type BranchRank struct {
	Rank       int     `json:"rank"`
	Branch     string  `json:"branch"`
	Done       int     `json:"done"`
	Total      int     `json:"total"`
	Rate       float64 `json:"rate"`
	TotalScore int     `json:"total_score"`
}

type Snapshot struct {
	Day         time.Time    `json:"day"`
	TopUsers    []UserRank   `json:"top_users"`
	TopBranches []BranchRank `json:"top_branches"`
}

// LeaderboardSnapshot is the persisted form of a Snapshot, one row per day.
type LeaderboardSnapshot struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	Day         time.Time      `json:"day" gorm:"type:date;not null;uniqueIndex:ux_leaderboard_snapshots_day"`
	TopUsers    datatypes.JSON `json:"top_users" gorm:"type:json;not null"`
	TopBranches datatypes.JSON `json:"top_branches" gorm:"type:json;not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null"`
}

func (LeaderboardSnapshot) TableName() string { return "leaderboard_snapshots" }

func (l LeaderboardSnapshot) Snapshot() (*Snapshot, error) {
	out := &Snapshot{Day: l.Day, TopUsers: []UserRank{}, TopBranches: []BranchRank{}}
	if len(l.TopUsers) > 0 {
		if err := json.Unmarshal(l.TopUsers, &out.TopUsers); err != nil {
			return nil, err
		}
	}
	if len(l.TopBranches) > 0 {
		if err := json.Unmarshal(l.TopBranches, &out.TopBranches); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Truncate keeps the first limit users. Branches are never cut.
func (s *Snapshot) Truncate(limit int) {
	if s == nil || limit <= 0 || len(s.TopUsers) <= limit {
		return
	}
	s.TopUsers = s.TopUsers[:limit]
}
