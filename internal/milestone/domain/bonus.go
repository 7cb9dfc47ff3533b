package domain

// ResolveBonus awards every milestone whose length equals streakDays exactly.
// A streak past a milestone earns nothing from it; only the day the streak
// lands on the milestone does.
func ResolveBonus(streakDays int, milestones []MilestoneConfig) Bonus {
	bonus := Bonus{Details: []BonusDetail{}}
	for _, m := range milestones {
		if m.StreakDays != streakDays {
			continue
		}
		bonus.Score += m.BonusScore
		bonus.Details = append(bonus.Details, BonusDetail{
			Milestone: m.StreakDays,
			Score:     m.BonusScore,
			Name:      m.Name,
		})
	}
	return bonus
}
