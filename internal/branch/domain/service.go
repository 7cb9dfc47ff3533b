package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	AggregateBranchScores(ctx context.Context, day time.Time) ([]BranchScoreDaily, error)
	ListBranchScores(ctx context.Context, day time.Time) ([]BranchScoreDaily, error)
}

var ErrInvalidDay = errors.New("invalid_day")
