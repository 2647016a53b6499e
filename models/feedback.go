package models

import "time"

type FeedbackStatus string

const (
	FeedbackPending   FeedbackStatus = "pending"
	FeedbackResponded FeedbackStatus = "responded"
)

type Feedback struct {
	FeedbackID   uint           `json:"feedback_id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"not null;index"`
	UserType     Role           `json:"user_type" gorm:"not null"`
	Description  string         `json:"description" gorm:"not null"`
	Status       FeedbackStatus `json:"status" gorm:"not null;default:pending"`
	ResponseText string         `json:"response_text"`
	AdminID      *uint          `json:"admin_id"`
	RespondedAt  *time.Time     `json:"responded_at"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}
