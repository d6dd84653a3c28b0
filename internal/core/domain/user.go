package domain

import "time"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// User is an account holder. Users own conversations and tutoring sessions.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}
