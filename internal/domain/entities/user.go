package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;type:text;not null"` // Never expose in JSON

	// Timestamps
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with default values
func NewUser(email, passwordHash, name string) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// DisplayNameFromEmail derives a display name from the local part of an email
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// DevEmail is the synthetic address used for token-only development users
func DevEmail(username string) string {
	return username + "@example.com"
}

// HasPassword reports whether the user registered with a password
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// Validate validates user data
func (u *User) Validate() error {
	if local, domain, ok := strings.Cut(u.Email, "@"); !ok || local == "" || domain == "" {
		return ErrInvalidEmail
	}
	return nil
}
