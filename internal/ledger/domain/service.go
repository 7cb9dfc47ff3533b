package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
)

type Service interface {
	RecordEntry(ctx context.Context, req RecordEntryRequest) (*RecordEntryResponse, error)
	VoidEntry(ctx context.Context, userID string, entryID snowflake.ID) error
	CorrectEntry(ctx context.Context, req CorrectEntryRequest) (*LedgerEntry, error)
	Checkin(ctx context.Context, userID string, day time.Time) (*scoredomain.DailyScore, error)
	ListEntries(ctx context.Context, userID string, day time.Time, includeVoided bool) ([]LedgerEntry, error)
}

type RecordEntryRequest struct {
	UserID        string          `json:"user_id"`
	CategoryGroup string          `json:"category_group"`
	CategoryCode  string          `json:"category_code"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note"`
	Day           time.Time       `json:"day"`
}

// RecordEntryResponse carries the stored entry and, when scoring succeeded,
// the day's score. A nil Score means no score was awarded for this write.
type RecordEntryResponse struct {
	Entry LedgerEntry              `json:"entry"`
	Score *scoredomain.DailyScore `json:"score,omitempty"`
}

type CorrectEntryRequest struct {
	UserID        string          `json:"user_id"`
	EntryID       snowflake.ID    `json:"entry_id"`
	CategoryGroup string          `json:"category_group"`
	CategoryCode  string          `json:"category_code"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note"`
	Day           time.Time       `json:"day"`
}

var (
	ErrInvalidUser          = errors.New("invalid_user")
	ErrInvalidDay           = errors.New("invalid_day")
	ErrInvalidCategoryGroup = errors.New("invalid_category_group")
	ErrInvalidCategoryCode  = errors.New("invalid_category_code")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrInvalidEntry         = errors.New("invalid_entry_id")
	ErrNotFound             = errors.New("not_found")
	ErrAlreadyVoided        = errors.New("entry_already_voided")
)
