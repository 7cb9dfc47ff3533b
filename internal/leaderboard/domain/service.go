package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	BuildLeaderboardSnapshot(ctx context.Context, day time.Time) (*Snapshot, error)
	// GetLeaderboard reads the stored snapshot, keeping at most limit users.
	// A non-positive limit falls back to the configured default.
	GetLeaderboard(ctx context.Context, day time.Time, limit int) (*Snapshot, error)
}

var (
	ErrInvalidDay   = errors.New("invalid_day")
	ErrInvalidLimit = errors.New("invalid_limit")
	ErrNotFound     = errors.New("not_found")
)
