package models

import "time"

type Donor struct {
	DonorID      uint       `json:"donor_id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"not null" validate:"required"`
	Email        string     `json:"email" gorm:"unique;not null" validate:"required,email"`
	Password     string     `json:"password" gorm:"not null" validate:"required,min=6"`
	BloodGroup   string     `json:"blood_group" gorm:"not null" validate:"required"`
	Age          int        `json:"age" gorm:"not null" validate:"required,gte=18,lte=65"`
	Gender       string     `json:"gender" gorm:"not null" validate:"required"`
	City         string     `json:"city" gorm:"not null" validate:"required"`
	State        string     `json:"state" gorm:"not null" validate:"required"`
	Phone        string     `json:"phone" gorm:"not null" validate:"required"`
	IsAvailable  bool       `json:"is_available" gorm:"default:true"`
	Donations    int        `json:"donations" gorm:"default:0"`
	LastDonation *time.Time `json:"last_donation"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
