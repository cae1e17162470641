package grading

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// PassScore is the minimum score counted as a pass.
const PassScore = 50

var (
	ErrNotReady          = errors.New("test is not ready for online grading")
	ErrStoredDataCorrupt = errors.New("stored answer key no longer parses")
	ErrEmptySubmission   = errors.New("submission has no answers")
)

// Key is the stored grading configuration of a test.
type Key struct {
	Total       int
	ClosedCount int
	OpenCount   int
	AnswersText string
}

// ClosedSlots returns the number of closed questions, deriving it from
// total and open counts when the stored closed count is absent.
func (k Key) ClosedSlots() int {
	if k.ClosedCount > 0 {
		return k.ClosedCount
	}
	if c := k.Total - k.OpenCount; c > 0 {
		return c
	}
	return 0
}

// Submission holds one answer per closed slot and one per open slot.
type Submission struct {
	Closed []string
	Open   []string
	// RequireAnswer rejects submissions where every slot is blank.
	RequireAnswer bool
}

// Empty reports whether every slot is blank after trimming.
func (s Submission) Empty() bool {
	for _, a := range s.Closed {
		if strings.TrimSpace(a) != "" {
			return false
		}
	}
	for _, a := range s.Open {
		if strings.TrimSpace(a) != "" {
			return false
		}
	}
	return true
}

// Outcome is the graded result of a submission.
type Outcome struct {
	Score          int  `json:"score"`
	Correct        int  `json:"correct"`
	TotalClosed    int  `json:"total_closed"`
	TotalQuestions int  `json:"total_questions"`
	Passed         bool `json:"passed"`
}

// Grade scores a submission against a stored key. It has no side effects.
func Grade(key Key, sub Submission) (*Outcome, error) {
	closed := key.ClosedSlots()

	if key.Total < 1 || strings.TrimSpace(key.AnswersText) == "" {
		return nil, ErrNotReady
	}
	if closed > key.Total || (closed == 0 && key.OpenCount != key.Total) {
		return nil, ErrNotReady
	}

	lines, err := ParseAnswerKey(key.AnswersText, key.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoredDataCorrupt, err)
	}

	if sub.RequireAnswer && sub.Empty() {
		return nil, ErrEmptySubmission
	}

	correct := 0
	for i, line := range lines {
		if i < closed {
			if closedMatches(slot(sub.Closed, i), line.Answer) {
				correct++
			}
			continue
		}
		if OpenMatches(slot(sub.Open, i-closed), line.Answer) {
			correct++
		}
	}

	score := int(math.Round(float64(correct) / float64(key.Total) * 100))

	return &Outcome{
		Score:          score,
		Correct:        correct,
		TotalClosed:    closed,
		TotalQuestions: key.Total,
		Passed:         score >= PassScore,
	}, nil
}

func slot(answers []string, i int) string {
	if i < len(answers) {
		return answers[i]
	}
	return ""
}

func closedMatches(given, want string) bool {
	g := strings.ToUpper(strings.TrimSpace(given))
	return g != "" && g == strings.ToUpper(strings.TrimSpace(want))
}

// OpenMatches compares an open answer to its key. Both sides lose all
// whitespace and use "." as the decimal separator; when both parse as
// decimals they are compared exactly, otherwise as strings.
func OpenMatches(given, want string) bool {
	g := normalizeOpen(given)
	w := normalizeOpen(want)
	if g == "" {
		return false
	}

	gd, gErr := decimal.NewFromString(g)
	wd, wErr := decimal.NewFromString(w)
	if gErr == nil && wErr == nil {
		return gd.Equal(wd)
	}
	return g == w
}

func normalizeOpen(s string) string {
	return strings.ReplaceAll(strings.Join(strings.Fields(s), ""), ",", ".")
}
