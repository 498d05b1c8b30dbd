package models

import (
	"time"
)

// RefreshToken is a persisted refresh token for one staff member. Tokens
// are rotated on every refresh and revoked on logout, so a stolen token
// stops working once it has been used or surrendered.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
