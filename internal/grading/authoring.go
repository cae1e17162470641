package grading

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	closedAnswerPattern = regexp.MustCompile(`(?i)^[A-D]$`)
	digitPattern        = regexp.MustCompile(`\d`)
)

// Draft is a test as submitted by an author, before it is stored.
type Draft struct {
	Title       string
	PDFLink     string
	Total       int
	Open        int
	AnswersText string
	// Timer is the raw timer value in minutes; empty means no timer.
	Timer string

	IsStarEligible bool
	StarStart      *time.Time
	StarEnd        *time.Time
}

// Authored is the outcome of a successful authoring validation.
type Authored struct {
	Lines        []AnswerLine
	ClosedCount  int
	TimerMinutes *int
}

// ValidateAuthoring checks a draft in a fixed order: required fields, the
// open/total split, the answer key structure, then per-question answer
// formats. The first closedCount questions must be a single letter A-D and
// the rest must contain a digit.
func ValidateAuthoring(d Draft) (*Authored, error) {
	if strings.TrimSpace(d.Title) == "" {
		return nil, invalid(RuleTitleRequired, "title is required")
	}
	if strings.TrimSpace(d.PDFLink) == "" {
		return nil, invalid(RulePDFLinkRequired, "pdf link is required")
	}
	if d.Total < 1 {
		return nil, invalid(RuleTotalMin, "total questions must be at least 1")
	}
	if d.Open < 0 {
		return nil, invalid(RuleOpenMin, "open questions cannot be negative")
	}

	timer, err := parseTimer(d.Timer)
	if err != nil {
		return nil, err
	}

	if d.IsStarEligible && d.StarStart != nil && d.StarEnd != nil && !d.StarEnd.After(*d.StarStart) {
		return nil, invalid(RuleStarWindow, "star window end must be after its start")
	}

	if d.Open > d.Total {
		return nil, invalid(RuleOpenExceedsTotal, "open questions (%d) cannot exceed total questions (%d)", d.Open, d.Total)
	}

	lines, err := ParseAnswerKey(d.AnswersText, d.Total)
	if err != nil {
		return nil, err
	}

	closedUntil := d.Total - d.Open
	for _, l := range lines {
		if l.Index <= closedUntil {
			if !closedAnswerPattern.MatchString(l.Answer) {
				return nil, rowError(RuleClosedAnswer, l.Index, l.Answer,
					"question %d is a closed question and its answer must be one of A, B, C, D; got %q", l.Index, l.Answer)
			}
			continue
		}
		if !digitPattern.MatchString(l.Answer) {
			return nil, rowError(RuleOpenAnswer, l.Index, l.Answer,
				"question %d is an open question and its answer must contain a number; got %q", l.Index, l.Answer)
		}
	}

	return &Authored{
		Lines:        lines,
		ClosedCount:  closedUntil,
		TimerMinutes: timer,
	}, nil
}

func parseTimer(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalid(RuleTimerInvalid, "timer must be a whole number of minutes, got %q", raw)
	}
	if n < 0 {
		return nil, invalid(RuleTimerInvalid, "timer cannot be negative")
	}
	return &n, nil
}
