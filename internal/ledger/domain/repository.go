package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *LedgerEntry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LedgerEntry, error)
	// Void flags the entry and reports whether this call was the one that voided it.
	Void(ctx context.Context, db *gorm.DB, id snowflake.ID, voidedAt time.Time) (bool, error)
	ListEntries(ctx context.Context, db *gorm.DB, userID string, day time.Time, includeVoided bool) ([]LedgerEntry, error)
	ListUserDays(ctx context.Context, db *gorm.DB, from, to time.Time) ([]UserDay, error)
}
