package model

import "time"

// ActivityEvent is a write-once fact used for calendar aggregation.
// ActivityDate is the UTC day (YYYY-MM-DD) so grouping stays portable across drivers.
type ActivityEvent struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	UserID       string       `json:"user_id" gorm:"not null;index:idx_activity_user_date,priority:1"`
	Kind         ActivityKind `json:"kind" gorm:"type:varchar(32);not null"`
	EntityID     string       `json:"entity_id"`
	ActivityDate string       `json:"activity_date" gorm:"type:varchar(10);not null;index:idx_activity_user_date,priority:2"`
	OccurredAt   time.Time    `json:"occurred_at"`
}
