package scheduler

import "errors"

var (
	ErrInvalidConfig   = errors.New("invalid_scheduler_config")
	ErrInvalidSchedule = errors.New("invalid_batch_schedule")
	ErrInvalidRange    = errors.New("invalid_rebuild_range")
)
