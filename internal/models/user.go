package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RolePatient      Role = "patient"
	RoleProfessional Role = "professional"
	// RoleUser is held by accounts that logged in but have not completed a profile yet.
	RoleUser Role = "user"
)

// AccountStatus tracks profile completion.
type AccountStatus string

const (
	AccountPending   AccountStatus = "pending"
	AccountCompleted AccountStatus = "completed"
)

// User represents a user in the system
type User struct {
	BaseModel
	Email                    string        `gorm:"uniqueIndex;size:255;not null" json:"email"`
	OTPHash                  string        `gorm:"size:255" json:"-"`
	OTPExpiresAt             *time.Time    `json:"-"`
	Status                   AccountStatus `gorm:"size:20;default:'pending'" json:"status"`
	Role                     Role          `gorm:"size:20;default:'user'" json:"role"`
	Name                     string        `gorm:"size:255" json:"name"`
	BirthdayDate             *time.Time    `json:"birthdayDate,omitempty"`
	ResidentialCEP           string        `gorm:"size:9" json:"residentialCep,omitempty"`
	Document                 string        `gorm:"size:20" json:"document,omitempty"`
	Specialties              []string      `gorm:"type:text;serializer:json" json:"specialties"`
	OtherSpecialties         []string      `gorm:"type:text;serializer:json" json:"otherSpecialties"`
	ServicePreferences       []string      `gorm:"type:text;serializer:json" json:"servicePreferences"`
	AccessibilityPreferences []string      `gorm:"type:text;serializer:json" json:"accessibilityPreferences"`
	PhotoID                  string        `gorm:"size:36" json:"-"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	Clinics       []Clinic       `gorm:"foreignKey:ProfessionalID" json:"-"`
	Addresses     []Address      `gorm:"foreignKey:UserID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID                       string        `json:"id"`
	Email                    string        `json:"email"`
	Name                     string        `json:"name"`
	Role                     Role          `json:"role"`
	Status                   AccountStatus `json:"status"`
	BirthdayDate             *time.Time    `json:"birthdayDate,omitempty"`
	ResidentialCEP           string        `json:"residentialCep,omitempty"`
	Specialties              []string      `json:"specialties,omitempty"`
	OtherSpecialties         []string      `json:"otherSpecialties,omitempty"`
	ServicePreferences       []string      `json:"servicePreferences,omitempty"`
	AccessibilityPreferences []string      `json:"accessibilityPreferences,omitempty"`
	HasPhoto                 bool          `json:"hasPhoto"`
	CreatedAt                time.Time     `json:"createdAt"`
	UpdatedAt                time.Time     `json:"updatedAt"`
}

// SetOTP hashes a one-time password and stores it with its expiry.
func (u *User) SetOTP(code string, ttl time.Duration, now time.Time) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	expiresAt := now.Add(ttl)
	u.OTPHash = string(hashed)
	u.OTPExpiresAt = &expiresAt
	return nil
}

// CheckOTP compares a code with the stored hash. Expired or missing codes never match.
func (u *User) CheckOTP(code string, now time.Time) bool {
	if u.OTPHash == "" || u.OTPExpiresAt == nil || !now.Before(*u.OTPExpiresAt) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.OTPHash), []byte(code)) == nil
}

// ClearOTP makes the last issued code unusable.
func (u *User) ClearOTP() {
	u.OTPHash = ""
	u.OTPExpiresAt = nil
}

// IsProfessional reports whether the account completed a professional profile.
func (u *User) IsProfessional() bool {
	return u.Role == RoleProfessional
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:                       u.ID,
		Email:                    u.Email,
		Name:                     u.Name,
		Role:                     u.Role,
		Status:                   u.Status,
		BirthdayDate:             u.BirthdayDate,
		ResidentialCEP:           u.ResidentialCEP,
		Specialties:              u.Specialties,
		OtherSpecialties:         u.OtherSpecialties,
		ServicePreferences:       u.ServicePreferences,
		AccessibilityPreferences: u.AccessibilityPreferences,
		HasPhoto:                 u.PhotoID != "",
		CreatedAt:                u.CreatedAt,
		UpdatedAt:                u.UpdatedAt,
	}
}
