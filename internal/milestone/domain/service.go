package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]MilestoneConfig, error)
	// SeedDefaults fills an empty milestone table from configuration and
	// returns how many rows it inserted.
	SeedDefaults(ctx context.Context) (int, error)
}

var (
	ErrInvalidStreakDays = errors.New("invalid_streak_days")
	ErrInvalidBonusScore = errors.New("invalid_bonus_score")
)
