package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	// List returns every milestone ordered by streak length.
	List(ctx context.Context, db *gorm.DB) ([]MilestoneConfig, error)
	Insert(ctx context.Context, db *gorm.DB, m *MilestoneConfig) error
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
