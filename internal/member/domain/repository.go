package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, m *Member) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Member, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]Member, error)
	// ListByBranch returns the roster of one branch, or every member that has
	// a branch when branchCode is nil.
	ListByBranch(ctx context.Context, db *gorm.DB, branchCode *string) ([]Member, error)
}
