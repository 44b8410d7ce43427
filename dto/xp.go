package dto

import (
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
)

// Reasons an award call granted nothing. They are results, not errors.
const (
	AwardReasonUnknownUser    = "unknown_user"
	AwardReasonUnknownAction  = "unknown_action"
	AwardReasonAlreadyAwarded = "already_awarded"
)

type AwardResult struct {
	ActionKind model.ActionKind `json:"action_kind"`
	TargetID   string           `json:"target_id"`
	XPAwarded  int              `json:"xp_awarded"`
	LevelUp    bool             `json:"level_up"`
	NewTotalXP int              `json:"new_total_xp"`
	NewLevel   int              `json:"new_level"`
	Reason     string           `json:"reason,omitempty"`
}

// Awarded reports whether the call granted XP.
func (r *AwardResult) Awarded() bool {
	return r != nil && r.XPAwarded > 0
}

type LedgerResponse struct {
	UserID        string `json:"user_id"`
	TotalXP       int    `json:"total_xp"`
	Level         int    `json:"level"`
	XPToNextLevel int    `json:"xp_to_next_level"`
}

type XPAwardResponse struct {
	ActionKind  model.ActionKind `json:"action_kind"`
	TargetID    string           `json:"target_id"`
	Amount      int              `json:"amount"`
	Description string           `json:"description,omitempty"`
	AwardedAt   time.Time        `json:"awarded_at"`
}

type CheckInResponse struct {
	Date       string `json:"date"`
	XPAwarded  int    `json:"xp_awarded"`
	LevelUp    bool   `json:"level_up"`
	NewTotalXP int    `json:"new_total_xp"`
	NewLevel   int    `json:"new_level"`
	Streak     int    `json:"streak"`
}
