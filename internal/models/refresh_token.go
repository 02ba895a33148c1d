package models

import (
	"time"
)

// RefreshToken represents a JWT refresh token in the database
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Usable reports whether the token can still be exchanged.
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}
