package dto

import "time"

type StreakResponse struct {
	CurrentStreak  int        `json:"current_streak"`
	LongestStreak  int        `json:"longest_streak"`
	LastActiveDate *string    `json:"last_active_date,omitempty"`
	ActiveToday    bool       `json:"active_today"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

type ProfileResponse struct {
	UserID       string            `json:"user_id"`
	Username     string            `json:"username"`
	DisplayName  string            `json:"display_name,omitempty"`
	Ledger       LedgerResponse    `json:"ledger"`
	Streak       StreakResponse    `json:"streak"`
	RecentAwards []XPAwardResponse `json:"recent_awards"`
	SolvedCount  int64             `json:"solved_count"`
	JoinedAt     time.Time         `json:"joined_at"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	XP          int    `json:"xp"`
	Level       int    `json:"level"`
}

type LeaderboardResponse struct {
	Period      string             `json:"period"`
	Entries     []LeaderboardEntry `json:"entries"`
	CurrentUser *LeaderboardEntry  `json:"current_user,omitempty"`
	GeneratedAt time.Time          `json:"generated_at"`
}
