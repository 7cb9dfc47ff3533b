package repository

import (
	"context"

	milestonedomain "github.com/smallbiznis/streakscore/internal/milestone/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() milestonedomain.Repository {
	return &repo{}
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]milestonedomain.MilestoneConfig, error) {
	var items []milestonedomain.MilestoneConfig
	err := db.WithContext(ctx).Raw(
		`SELECT id, streak_days, bonus_score, name, created_at
		 FROM milestone_configs
		 ORDER BY streak_days ASC, id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *milestonedomain.MilestoneConfig) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO milestone_configs (id, streak_days, bonus_score, name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		m.ID,
		m.StreakDays,
		m.BonusScore,
		m.Name,
		m.CreatedAt,
	).Error
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(`SELECT COUNT(1) FROM milestone_configs`).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
