package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CategoryGroup is the top-level bucket a ledger entry is summarised under.
type CategoryGroup string

const (
	CategoryGroupA CategoryGroup = "A"
	CategoryGroupB CategoryGroup = "B"
	CategoryGroupC CategoryGroup = "C"
)

func (g CategoryGroup) Valid() bool {
	switch g {
	case CategoryGroupA, CategoryGroupB, CategoryGroupC:
		return true
	default:
		return false
	}
}

// LedgerEntry is append-only. Amount never changes after insert; an entry is
// either voided or replaced by a correction that points back through ParentID.
type LedgerEntry struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	UserID        string          `json:"user_id" gorm:"type:varchar(64);not null;index:idx_ledger_entries_user_day,priority:1"`
	CategoryGroup CategoryGroup   `json:"category_group" gorm:"type:varchar(1);not null"`
	CategoryCode  string          `json:"category_code" gorm:"type:varchar(64);not null"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	Note          string          `json:"note" gorm:"type:text"`
	Day           time.Time       `json:"day" gorm:"type:date;not null;index:idx_ledger_entries_user_day,priority:2"`
	Voided        bool            `json:"voided" gorm:"not null;default:false"`
	VoidedAt      *time.Time      `json:"voided_at,omitempty"`
	ParentID      *snowflake.ID   `json:"parent_id,omitempty" gorm:"index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// UserDay is one (user, day) key that has ledger activity.
type UserDay struct {
	UserID string
	Day    time.Time
}
