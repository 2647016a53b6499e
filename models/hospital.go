package models

import "time"

type Hospital struct {
	HospitalID        uint       `json:"hospital_id" gorm:"primaryKey"`
	Name              string     `json:"name" gorm:"not null" validate:"required"`
	Email             string     `json:"email" gorm:"unique;not null" validate:"required,email"`
	Password          string     `json:"password" gorm:"not null" validate:"required,min=6"`
	LicenseNumber     string     `json:"license_number" gorm:"unique;not null" validate:"required"`
	ContactPerson     string     `json:"contact_person" gorm:"not null" validate:"required"`
	Phone             string     `json:"phone" gorm:"not null" validate:"required"`
	City              string     `json:"city" gorm:"not null" validate:"required"`
	State             string     `json:"state" gorm:"not null" validate:"required"`
	IsVerified        bool       `json:"is_verified" gorm:"default:false"`
	RequestsMade      int        `json:"requests_made" gorm:"default:0"`
	RequestsCompleted int        `json:"requests_completed" gorm:"default:0"`
	LastLogin         *time.Time `json:"last_login"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
