package model

import "time"

// DefaultProfilePicture is the picture reference given to users who upload none.
const DefaultProfilePicture = "default.jpg"

// User represents a registered account. Username and email are unique.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash   string    `json:"-" gorm:"size:128;not null"` // Never expose in JSON
	ProfilePicture string    `json:"profile_picture" gorm:"size:255;default:'default.jpg'"`
	DateJoined     time.Time `json:"date_joined" gorm:"autoCreateTime"`
}
