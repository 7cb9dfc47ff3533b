package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	memberdomain "github.com/smallbiznis/streakscore/internal/member/domain"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
)

// Aggregate rolls one day of scores up per branch. Members without a branch
// and scores of users outside the roster are ignored. Rows come back ranked
// by average score, ties keeping branch code order.
func Aggregate(day time.Time, members []memberdomain.Member, scores []scoredomain.DailyScore) []BranchScoreDaily {
	branchOf := make(map[string]string, len(members))
	rows := map[string]*BranchScoreDaily{}
	for _, m := range members {
		code := m.Branch()
		if code == "" {
			continue
		}
		branchOf[m.ID] = code
		row, ok := rows[code]
		if !ok {
			row = &BranchScoreDaily{BranchCode: code, Day: day}
			rows[code] = row
		}
		row.TotalMembers++
	}

	for _, s := range scores {
		code, ok := branchOf[s.UserID]
		if !ok {
			continue
		}
		row := rows[code]
		row.TotalScore += s.TotalScore
		if s.TotalScore > 0 {
			row.ActiveMembers++
		}
	}

	codes := make([]string, 0, len(rows))
	for code := range rows {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]BranchScoreDaily, 0, len(codes))
	for _, code := range codes {
		row := rows[code]
		row.AvgScore = decimal.NewFromInt(int64(row.TotalScore)).
			Div(decimal.NewFromInt(int64(row.TotalMembers))).
			Round(2)
		out = append(out, *row)
	}

	Rank(out)
	return out
}

// Rank orders rows by AvgScore descending with a stable sort and numbers them from 1.
func Rank(rows []BranchScoreDaily) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AvgScore.GreaterThan(rows[j].AvgScore)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}
