package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	branchrepo "github.com/smallbiznis/streakscore/internal/branch/repository"
	"github.com/smallbiznis/streakscore/internal/clock"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	memberrepo "github.com/smallbiznis/streakscore/internal/member/repository"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	scorerepo "github.com/smallbiznis/streakscore/internal/score/repository"
	"github.com/smallbiznis/streakscore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var day = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.NewFakeClock(day.Add(24 * time.Hour)),
		Repo:       branchrepo.Provide(),
		MemberRepo: memberrepo.Provide(),
		ScoreRepo:  scorerepo.Provide(),
	}).(*Service)
	return svc, db, node
}

// seedBranch registers size members of branch; the first len(totals) of them
// get a score with the given total.
func seedBranch(t *testing.T, db *gorm.DB, node *snowflake.Node, branch string, size int, totals ...int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < size; i++ {
		code := branch
		id := fmt.Sprintf("%s-%02d", branch, i)
		require.NoError(t, memberrepo.Provide().Upsert(ctx, db, &memberdomain.Member{
			ID: id, DisplayName: id, BranchCode: &code, CreatedAt: day, UpdatedAt: day,
		}))
		if i >= len(totals) {
			continue
		}
		require.NoError(t, scorerepo.Provide().Insert(ctx, db, &scoredomain.DailyScore{
			ID:            node.Generate(),
			UserID:        id,
			Day:           day,
			BaseScore:     1,
			StreakScore:   1,
			BonusScore:    totals[i] - 2,
			TotalScore:    totals[i],
			CurrentStreak: 1,
			RecordType:    scoredomain.RecordTypeRecord,
			BonusDetails:  datatypes.JSON(`[]`),
			CreatedAt:     day,
		}))
	}
}

func TestAggregateBranchScores_RanksByAverage(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	seedBranch(t, db, node, "BR1", 10, 5, 5, 5, 5)
	seedBranch(t, db, node, "BR2", 5, 5, 5, 5, 5, 5)
	seedBranch(t, db, node, "BR3", 8, 4, 4)

	rows, err := svc.AggregateBranchScores(ctx, day)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	stored, err := svc.ListBranchScores(ctx, day)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	want := []struct {
		code          string
		avg           string
		active, total int
	}{
		{"BR2", "5.00", 5, 5},
		{"BR1", "2.00", 4, 10},
		{"BR3", "1.00", 2, 8},
	}
	for i, w := range want {
		assert.Equal(t, w.code, stored[i].BranchCode)
		assert.Equal(t, w.avg, stored[i].AvgScore.StringFixed(2))
		assert.Equal(t, w.active, stored[i].ActiveMembers)
		assert.Equal(t, w.total, stored[i].TotalMembers)
		assert.Equal(t, i+1, stored[i].Rank)
	}
}

func TestAggregateBranchScores_IsReplaceNotMerge(t *testing.T) {
	svc, db, node := newTestService(t)
	ctx := context.Background()

	seedBranch(t, db, node, "OLD", 2, 3)
	seedBranch(t, db, node, "NEW", 1, 2)

	_, err := svc.AggregateBranchScores(ctx, day)
	require.NoError(t, err)
	_, err = svc.AggregateBranchScores(ctx, day)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&branchdomain.BranchScoreDaily{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	// move every OLD member away
	require.NoError(t, db.Model(&memberdomain.Member{}).Where("branch_code = ?", "OLD").Update("branch_code", "NEW").Error)

	rows, err := svc.AggregateBranchScores(ctx, day)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	stored, err := svc.ListBranchScores(ctx, day)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "NEW", stored[0].BranchCode)
	assert.Equal(t, 3, stored[0].TotalMembers)
	assert.Equal(t, 5, stored[0].TotalScore)
}

func TestAggregateBranchScores_EmptyRoster(t *testing.T) {
	svc, _, _ := newTestService(t)

	rows, err := svc.AggregateBranchScores(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = svc.AggregateBranchScores(context.Background(), time.Time{})
	assert.ErrorIs(t, err, branchdomain.ErrInvalidDay)
}
