package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Test represents an admin-authored test with its answer key.
type Test struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	PDFLink        string     `json:"pdf_link"`
	TotalQuestions int        `json:"total_questions"`
	ClosedCount    int        `json:"closed_count"`
	OpenCount      int        `json:"open_count"`
	AnswersText    string     `json:"answers_text"`
	VideoLink      *string    `json:"video_link,omitempty"`
	TimerMinutes   *int       `json:"timer_minutes,omitempty"`
	IsStarEligible bool       `json:"is_star_eligible"`
	StarStartDate  *time.Time `json:"star_start_date,omitempty"`
	StarEndDate    *time.Time `json:"star_end_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TestSummary is the member-facing view of a test. It never carries the answer key.
type TestSummary struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	PDFLink        string     `json:"pdf_link"`
	TotalQuestions int        `json:"total_questions"`
	ClosedCount    int        `json:"closed_count"`
	OpenCount      int        `json:"open_count"`
	VideoLink      *string    `json:"video_link,omitempty"`
	TimerMinutes   *int       `json:"timer_minutes,omitempty"`
	IsStarEligible bool       `json:"is_star_eligible"`
	StarStartDate  *time.Time `json:"star_start_date,omitempty"`
	StarEndDate    *time.Time `json:"star_end_date,omitempty"`
	BestScore      *int       `json:"best_score,omitempty"`
	WindowState    string     `json:"window_state,omitempty"`
}

// UpsertTestRequest is the payload for creating or updating a test.
// Counts and the answer key are checked by the authoring validator, not here.
type UpsertTestRequest struct {
	Title          string     `json:"title" binding:"max=255"`
	PDFLink        string     `json:"pdf_link" binding:"max=1024"`
	TotalQuestions int        `json:"total_questions"`
	OpenCount      int        `json:"open_count"`
	AnswersText    string     `json:"answers_text"`
	VideoLink      string     `json:"video_link" binding:"omitempty,url,max=1024"`
	TimerMinutes   TimerInput `json:"timer_minutes"`
	IsStarEligible bool       `json:"is_star_eligible"`
	StarStartDate  *time.Time `json:"star_start_date"`
	StarEndDate    *time.Time `json:"star_end_date"`
}

// TimerInput keeps the raw timer text so the authoring validator decides
// whether it is a valid number of minutes. It accepts a JSON number or
// string; null and absent mean no timer.
type TimerInput string

func (t *TimerInput) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*t = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TimerInput(s)
	default:
		*t = TimerInput(raw)
	}
	return nil
}
