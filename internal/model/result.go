package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptMode is the policy a test was taken under.
type AttemptMode string

const (
	// AttemptModeTimed attempts may be repeated, except on star-eligible tests.
	AttemptModeTimed AttemptMode = "timed"
	// AttemptModeOnce allows a single lifetime attempt per test.
	AttemptModeOnce AttemptMode = "once"
)

// Result is one immutable submitted attempt.
type Result struct {
	ID              int64       `json:"id"`
	UserID          int         `json:"user_id"`
	TestID          uuid.UUID   `json:"test_id"`
	Score           int         `json:"score"`
	Mode            AttemptMode `json:"mode"`
	DurationSeconds *int        `json:"duration_seconds,omitempty"`
	// Exclusive results are limited to one per (user, test, mode).
	Exclusive bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SubmitTestRequest carries one answer per closed slot and one per open slot.
type SubmitTestRequest struct {
	Mode            AttemptMode `json:"mode" binding:"omitempty,oneof=timed once"`
	ClosedAnswers   []string    `json:"closed_answers" binding:"max=500,dive,max=16"`
	OpenAnswers     []string    `json:"open_answers" binding:"max=500,dive,max=64"`
	DurationSeconds *int        `json:"duration_seconds" binding:"omitempty,min=0"`
}

// SubmitTestResponse is returned after grading.
type SubmitTestResponse struct {
	ResultID       int64   `json:"result_id"`
	Score          int     `json:"score"`
	Correct        int     `json:"correct"`
	TotalClosed    int     `json:"total_closed"`
	TotalQuestions int     `json:"total_questions"`
	Passed         bool    `json:"passed"`
	HasVideo       bool    `json:"has_video"`
	VideoLink      *string `json:"video_link"`
	StarsAwarded   int     `json:"stars_awarded"`
}

// LatestResultResponse is the result page for a member's last attempt.
type LatestResultResponse struct {
	Test   TestSummary `json:"test"`
	Result *Result     `json:"result"`
	Passed bool        `json:"passed"`
}
