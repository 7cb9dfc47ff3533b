package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/smallbiznis/streakscore/pkg/calendar"
)

var errInvalidQueryInt = errors.New("invalid_integer")

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, errInvalidQueryInt
	}
	return &parsed, nil
}

// parseDayParam accepts a bare date or an RFC 3339 timestamp and returns the
// calendar day it names.
func parseDayParam(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if parsed, err := calendar.Parse(trimmed); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return calendar.Normalize(parsed), nil
	}
	return time.Time{}, calendar.ErrInvalidDay
}
