package domain

import "time"

// Member is a scoring participant. BranchCode is nil for users outside any branch.
type Member struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	DisplayName string    `json:"display_name" gorm:"type:text;not null"`
	BranchCode  *string   `json:"branch_code,omitempty" gorm:"type:varchar(64);index:idx_members_branch_code"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null"`
}

func (Member) TableName() string { return "members" }

func (m Member) Branch() string {
	if m.BranchCode == nil {
		return ""
	}
	return *m.BranchCode
}
