package models

import "time"

// User represents a registered chat account.
// PasswordHash is never serialized; every response path goes through Public().
type User struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"-"`
	FullName     string    `gorm:"size:128;not null" json:"-"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	ProfilePic   string    `gorm:"size:512" json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// PublicUser is the client-facing projection of a user record.
type PublicUser struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	ProfilePic string    `json:"profilePic,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Public projects out everything a client is allowed to see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}
