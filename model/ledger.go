package model

import "time"

// UserXPLedger holds the running XP total and level for one user.
type UserXPLedger struct {
	UserID    string    `json:"user_id" gorm:"primaryKey"`
	TotalXP   int       `json:"total_xp" gorm:"not null;default:0;index"`
	Level     int       `json:"level" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// XPAward records one granted reward. The unique key on
// (user, action, target) is what makes awarding idempotent.
type XPAward struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"not null;uniqueIndex:idx_xp_award_key,priority:1;index:idx_xp_award_user_time,priority:1"`
	ActionKind  ActionKind `json:"action_kind" gorm:"type:varchar(32);not null;uniqueIndex:idx_xp_award_key,priority:2"`
	TargetID    string     `json:"target_id" gorm:"not null;uniqueIndex:idx_xp_award_key,priority:3"`
	Amount      int        `json:"amount" gorm:"not null"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_xp_award_user_time,priority:2"`
}

// UserStreak tracks consecutive UTC days with qualifying activity.
type UserStreak struct {
	UserID         string     `json:"user_id" gorm:"primaryKey"`
	CurrentStreak  int        `json:"current_streak" gorm:"not null;default:0"`
	LongestStreak  int        `json:"longest_streak" gorm:"not null;default:0"`
	LastActiveDate *time.Time `json:"last_active_date" gorm:"index"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
