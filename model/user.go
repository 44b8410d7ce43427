package model

import "time"

// User is the account that owns every ledger, progress and activity row.
// Credentials live with the auth provider; only identity is kept here.
type User struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Email       string    `json:"email" gorm:"unique"`
	Username    string    `json:"username" gorm:"unique;not null"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
