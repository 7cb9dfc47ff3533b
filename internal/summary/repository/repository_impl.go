package repository

import (
	"context"
	"time"

	summarydomain "github.com/smallbiznis/streakscore/internal/summary/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() summarydomain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, s *summarydomain.DailySummary) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"sum_a", "sum_b", "sum_c", "total_count"}),
	}).Create(s).Error
}

func (r *repo) FindByUserDay(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*summarydomain.DailySummary, error) {
	var summary summarydomain.DailySummary
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, day, sum_a, sum_b, sum_c, total_count
		 FROM daily_summaries
		 WHERE user_id = ? AND day = ?`,
		userID,
		day,
	).Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	if summary.UserID == "" {
		return nil, nil
	}
	return &summary, nil
}
