package repository

import (
	"context"
	"time"

	leaderboarddomain "github.com/smallbiznis/streakscore/internal/leaderboard/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() leaderboarddomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, s *leaderboarddomain.LeaderboardSnapshot) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"top_users", "top_branches", "updated_at"}),
	}).Create(s).Error
}

func (r *repo) FindByDay(ctx context.Context, db *gorm.DB, day time.Time) (*leaderboarddomain.LeaderboardSnapshot, error) {
	var snapshot leaderboarddomain.LeaderboardSnapshot
	err := db.WithContext(ctx).Raw(
		`SELECT id, day, top_users, top_branches, created_at, updated_at
		 FROM leaderboard_snapshots
		 WHERE day = ?`,
		day,
	).Scan(&snapshot).Error
	if err != nil {
		return nil, err
	}
	if snapshot.ID == 0 {
		return nil, nil
	}
	return &snapshot, nil
}
