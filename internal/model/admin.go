package model

import "time"

// AdminLoginRequest carries the rotating admin access code.
type AdminLoginRequest struct {
	Code string `json:"code" binding:"required,len=8,numeric"`
}

// DashboardUser is a member row on the admin dashboard.
type DashboardUser struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	StarsBalance int       `json:"stars_balance"`
	TestsCount   int       `json:"tests_count"`
	AvgScore     int       `json:"avg_score"`
	CreatedAt    time.Time `json:"created_at"`
}

// Dashboard is the admin overview.
type Dashboard struct {
	Users           []DashboardUser `json:"users"`
	Tests           []Test          `json:"tests"`
	UsersWithThread []ThreadSummary `json:"users_with_messages"`
}
