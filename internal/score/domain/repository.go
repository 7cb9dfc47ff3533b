package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, score *DailyScore) error
	FindByUserDay(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*DailyScore, error)
	// FindLatestBefore returns the newest score strictly before day.
	FindLatestBefore(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*DailyScore, error)
	FindLatest(ctx context.Context, db *gorm.DB, userID string) (*DailyScore, error)
	ListByDay(ctx context.Context, db *gorm.DB, day time.Time) ([]DailyScore, error)
}
