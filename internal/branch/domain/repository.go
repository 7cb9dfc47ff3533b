package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, rows []BranchScoreDaily) error
	// DeleteStale removes rows of day whose branch is not in keep.
	DeleteStale(ctx context.Context, db *gorm.DB, day time.Time, keep []string) error
	ListByDay(ctx context.Context, db *gorm.DB, day time.Time) ([]BranchScoreDaily, error)
}
