package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/streakscore/internal/clock"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	"github.com/smallbiznis/streakscore/internal/member/repository"
	"github.com/smallbiznis/streakscore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return New(Params{
		DB:    testutil.OpenDB(t),
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	}).(*Service)
}

func strPtr(s string) *string { return &s }

func TestRegisterAndReassignBranch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	member, err := svc.Register(ctx, memberdomain.RegisterRequest{ID: "u1", DisplayName: " Ana ", BranchCode: strPtr("jkt")})
	require.NoError(t, err)
	assert.Equal(t, "Ana", member.DisplayName)
	assert.Equal(t, "JKT", member.Branch())

	member, err = svc.Register(ctx, memberdomain.RegisterRequest{ID: "u1", DisplayName: "Ana", BranchCode: strPtr("BDG")})
	require.NoError(t, err)
	assert.Equal(t, "BDG", member.Branch())

	jkt, err := svc.ListByBranch(ctx, "jkt")
	require.NoError(t, err)
	assert.Empty(t, jkt)

	bdg, err := svc.ListByBranch(ctx, "bdg")
	require.NoError(t, err)
	require.Len(t, bdg, 1)
	assert.Equal(t, "u1", bdg[0].ID)
}

func TestListByBranchNilMeansEveryBranchedMember(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, req := range []memberdomain.RegisterRequest{
		{ID: "b", DisplayName: "B", BranchCode: strPtr("Y")},
		{ID: "a", DisplayName: "A", BranchCode: strPtr("X")},
		{ID: "c", DisplayName: "C"},
	} {
		_, err := svc.Register(ctx, req)
		require.NoError(t, err)
	}

	members, err := svc.repo.ListByBranch(ctx, svc.db, nil)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].ID)
	assert.Equal(t, "b", members[1].ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, memberdomain.RegisterRequest{DisplayName: "x"})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidUser)

	_, err = svc.Register(ctx, memberdomain.RegisterRequest{ID: "u1"})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidName)

	_, err = svc.Register(ctx, memberdomain.RegisterRequest{ID: "u1", DisplayName: "x", BranchCode: strPtr(" ")})
	assert.ErrorIs(t, err, memberdomain.ErrInvalidBranch)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, memberdomain.ErrNotFound)
}
