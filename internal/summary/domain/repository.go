package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, summary *DailySummary) error
	FindByUserDay(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*DailySummary, error)
}
