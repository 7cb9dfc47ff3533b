package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveBonusExactMatchOnly(t *testing.T) {
	milestones := []MilestoneConfig{
		{StreakDays: 3, BonusScore: 1, Name: "three"},
		{StreakDays: 7, BonusScore: 3, Name: "seven"},
		{StreakDays: 10, BonusScore: 5, Name: "ten"},
	}

	for streak := 1; streak <= 12; streak++ {
		bonus := ResolveBonus(streak, milestones)
		switch streak {
		case 3:
			assert.Equal(t, 1, bonus.Score)
		case 7:
			assert.Equal(t, 3, bonus.Score)
		case 10:
			assert.Equal(t, 5, bonus.Score)
			assert.Equal(t, []BonusDetail{{Milestone: 10, Score: 5, Name: "ten"}}, bonus.Details)
		default:
			assert.Zero(t, bonus.Score, "streak %d", streak)
			assert.Empty(t, bonus.Details, "streak %d", streak)
		}
	}
}

func TestResolveBonusSumsMilestonesOfSameLength(t *testing.T) {
	milestones := []MilestoneConfig{
		{StreakDays: 7, BonusScore: 3, Name: "week"},
		{StreakDays: 7, BonusScore: 2, Name: "week promo"},
	}

	bonus := ResolveBonus(7, milestones)

	assert.Equal(t, 5, bonus.Score)
	assert.Equal(t, []BonusDetail{
		{Milestone: 7, Score: 3, Name: "week"},
		{Milestone: 7, Score: 2, Name: "week promo"},
	}, bonus.Details)
}

func TestResolveBonusWithoutMilestones(t *testing.T) {
	bonus := ResolveBonus(10, nil)
	assert.Zero(t, bonus.Score)
	assert.NotNil(t, bonus.Details)
	assert.Empty(t, bonus.Details)
}
