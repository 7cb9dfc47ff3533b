package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankUsersOrdering(t *testing.T) {
	north := "NORTH"
	members := []memberdomain.Member{
		{ID: "alice", DisplayName: "Alice", BranchCode: &north},
		{ID: "bob", DisplayName: "Bob"},
	}
	scores := []scoredomain.DailyScore{
		{UserID: "carol", TotalScore: 2, CurrentStreak: 1},
		{UserID: "bob", TotalScore: 5, CurrentStreak: 3},
		{UserID: "alice", TotalScore: 5, CurrentStreak: 3},
		{UserID: "dave", TotalScore: 5, CurrentStreak: 7},
	}

	ranks := RankUsers(scores, members)
	require.Len(t, ranks, 4)

	assert.Equal(t, []string{"dave", "alice", "bob", "carol"},
		[]string{ranks[0].UserID, ranks[1].UserID, ranks[2].UserID, ranks[3].UserID})
	for i, r := range ranks {
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, "Alice", ranks[1].DisplayName)
	assert.Equal(t, "NORTH", ranks[1].BranchCode)
	assert.Equal(t, "", ranks[2].BranchCode)
	assert.Equal(t, "dave", ranks[0].DisplayName)

	// input untouched
	assert.Equal(t, "carol", scores[0].UserID)
}

func TestRankUsersEmpty(t *testing.T) {
	ranks := RankUsers(nil, nil)
	assert.NotNil(t, ranks)
	assert.Empty(t, ranks)
}

func TestReshapeBranchesLegacyFields(t *testing.T) {
	rows := []branchdomain.BranchScoreDaily{
		{BranchCode: "B", Rank: 2, ActiveMembers: 1, TotalMembers: 4, TotalScore: 2, AvgScore: decimal.RequireFromString("0.50")},
		{BranchCode: "A", Rank: 1, ActiveMembers: 3, TotalMembers: 3, TotalScore: 9, AvgScore: decimal.RequireFromString("3.00")},
	}

	out := ReshapeBranches(rows)
	require.Len(t, out, 2)
	assert.Equal(t, BranchRank{Rank: 1, Branch: "A", Done: 3, Total: 3, Rate: 3, TotalScore: 9}, out[0])
	assert.Equal(t, BranchRank{Rank: 2, Branch: "B", Done: 1, Total: 4, Rate: 0.5, TotalScore: 2}, out[1])
}

func TestSnapshotTruncate(t *testing.T) {
	s := &Snapshot{TopUsers: make([]UserRank, 20), TopBranches: make([]BranchRank, 20)}
	s.Truncate(15)
	assert.Len(t, s.TopUsers, 15)
	assert.Len(t, s.TopBranches, 20)

	s.Truncate(0)
	assert.Len(t, s.TopUsers, 15)
}
