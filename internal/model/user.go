package model

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one element of a user's embedded attempt history.
type HistoryEntry struct {
	TestID uuid.UUID `json:"test_id"`
	Score  int       `json:"score"`
	Date   time.Time `json:"date"`
}

// User represents a club member.
type User struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	StarsBalance int            `json:"stars_balance"`
	TestsTaken   []HistoryEntry `json:"tests_taken"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// RegisterRequest is the payload for creating a member account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,notblank,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest is the payload for member authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// UserProfile is the public projection of a user.
type UserProfile struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	StarsBalance int       `json:"stars_balance"`
	CreatedAt    time.Time `json:"created_at"`
}
