package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, snapshot *LeaderboardSnapshot) error
	FindByDay(ctx context.Context, db *gorm.DB, day time.Time) (*LeaderboardSnapshot, error)
}
