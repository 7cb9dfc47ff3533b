package domain

import (
	"context"
	"errors"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Member, error)
	Get(ctx context.Context, id string) (*Member, error)
	ListByBranch(ctx context.Context, branchCode string) ([]Member, error)
}

type RegisterRequest struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	BranchCode  *string `json:"branch_code,omitempty"`
}

var (
	ErrInvalidUser   = errors.New("invalid_user")
	ErrInvalidName   = errors.New("invalid_display_name")
	ErrInvalidBranch = errors.New("invalid_branch_code")
	ErrNotFound      = errors.New("not_found")
)
