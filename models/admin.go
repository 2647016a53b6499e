package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Admin struct {
	AdminID   uint       `json:"admin_id" gorm:"primaryKey"`
	Name      string     `json:"name" gorm:"not null"`
	Email     string     `json:"email" gorm:"unique;not null"`
	Password  string     `json:"password" gorm:"not null"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// AuthClaims is the single claims shape carried by every session token,
// whichever role it was issued for.
type AuthClaims struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
	jwt.RegisteredClaims
}
