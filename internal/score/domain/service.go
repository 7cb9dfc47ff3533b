package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	ResolveStreak(ctx context.Context, userID string, asOfDay time.Time) (int, error)
	CalculateDailyScore(ctx context.Context, userID string, day time.Time, recordType RecordType) (*DailyScore, error)
	GetDailyScore(ctx context.Context, userID string, day time.Time) (*DailyScore, error)
}

var (
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidDay        = errors.New("invalid_day")
	ErrInvalidRecordType = errors.New("invalid_record_type")
	ErrNotFound          = errors.New("not_found")
)

const BaseScore = 1
