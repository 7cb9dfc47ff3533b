package domain

import (
	"time"

	"github.com/shopspring/decimal"
	ledgerdomain "github.com/smallbiznis/streakscore/internal/ledger/domain"
)

// DailySummary is a materialized fold of one user's non-voided entries for a
// day. It is replaced wholesale on every reconciliation.
type DailySummary struct {
	UserID     string          `json:"user_id" gorm:"primaryKey;type:varchar(64)"`
	Day        time.Time       `json:"day" gorm:"primaryKey;type:date"`
	SumA       decimal.Decimal `json:"sum_a" gorm:"column:sum_a;type:decimal(20,4);not null"`
	SumB       decimal.Decimal `json:"sum_b" gorm:"column:sum_b;type:decimal(20,4);not null"`
	SumC       decimal.Decimal `json:"sum_c" gorm:"column:sum_c;type:decimal(20,4);not null"`
	TotalCount int             `json:"total_count" gorm:"not null"`
}

func (DailySummary) TableName() string { return "daily_summaries" }

func (s DailySummary) SumByGroup() map[ledgerdomain.CategoryGroup]decimal.Decimal {
	return map[ledgerdomain.CategoryGroup]decimal.Decimal{
		ledgerdomain.CategoryGroupA: s.SumA,
		ledgerdomain.CategoryGroupB: s.SumB,
		ledgerdomain.CategoryGroupC: s.SumC,
	}
}

// Fold sums entries per category group. Voided entries are skipped even if
// the caller passed them in.
func Fold(userID string, day time.Time, entries []ledgerdomain.LedgerEntry) DailySummary {
	summary := DailySummary{
		UserID: userID,
		Day:    day,
		SumA:   decimal.Zero,
		SumB:   decimal.Zero,
		SumC:   decimal.Zero,
	}
	for _, e := range entries {
		if e.Voided {
			continue
		}
		switch e.CategoryGroup {
		case ledgerdomain.CategoryGroupA:
			summary.SumA = summary.SumA.Add(e.Amount)
		case ledgerdomain.CategoryGroupB:
			summary.SumB = summary.SumB.Add(e.Amount)
		case ledgerdomain.CategoryGroupC:
			summary.SumC = summary.SumC.Add(e.Amount)
		}
		summary.TotalCount++
	}
	return summary
}
