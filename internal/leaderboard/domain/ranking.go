package domain

import (
	"sort"

	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
)

// RankUsers orders a day's scores by total score, then streak, then user id,
// and attaches roster details where the user is known.
func RankUsers(scores []scoredomain.DailyScore, members []memberdomain.Member) []UserRank {
	byID := make(map[string]memberdomain.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	sorted := make([]scoredomain.DailyScore, len(scores))
	copy(sorted, scores)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.CurrentStreak != b.CurrentStreak {
			return a.CurrentStreak > b.CurrentStreak
		}
		return a.UserID < b.UserID
	})

	out := make([]UserRank, 0, len(sorted))
	for i, s := range sorted {
		rank := UserRank{
			Rank:          i + 1,
			UserID:        s.UserID,
			DisplayName:   s.UserID,
			TotalScore:    s.TotalScore,
			CurrentStreak: s.CurrentStreak,
		}
		if m, ok := byID[s.UserID]; ok {
			if m.DisplayName != "" {
				rank.DisplayName = m.DisplayName
			}
			rank.BranchCode = m.Branch()
		}
		out = append(out, rank)
	}
	return out
}

func ReshapeBranches(rows []branchdomain.BranchScoreDaily) []BranchRank {
	out := make([]BranchRank, 0, len(rows))
	for _, r := range rows {
		rate, _ := r.AvgScore.Float64()
		out = append(out, BranchRank{
			Rank:       r.Rank,
			Branch:     r.BranchCode,
			Done:       r.ActiveMembers,
			Total:      r.TotalMembers,
			Rate:       rate,
			TotalScore: r.TotalScore,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}
