package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	ReconcileDailySummary(ctx context.Context, userID string, day time.Time) (*DailySummary, error)
	GetDailySummary(ctx context.Context, userID string, day time.Time) (*DailySummary, error)
}

var (
	ErrInvalidUser = errors.New("invalid_user")
	ErrInvalidDay  = errors.New("invalid_day")
	ErrNotFound    = errors.New("not_found")
)
