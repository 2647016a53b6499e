package models

import "time"

// History is an append-only audit trail of user actions (register, login,
// logout, profile updates, camp interest, attendance changes).
type History struct {
	HistoryID uint      `json:"history_id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	UserType  Role      `json:"user_type" gorm:"not null"`
	Action    string    `json:"action" gorm:"not null"`
	Details   string    `json:"details"`
	Date      time.Time `json:"date" gorm:"autoCreateTime"`
}
