package grading

import (
	"errors"
	"fmt"
)

// Rule identifies which authoring or answer-key constraint was violated.
type Rule string

const (
	RuleTitleRequired    Rule = "title_required"
	RulePDFLinkRequired  Rule = "pdf_link_required"
	RuleTotalMin         Rule = "total_min"
	RuleOpenMin          Rule = "open_min"
	RuleTimerInvalid     Rule = "timer_invalid"
	RuleStarWindow       Rule = "star_window"
	RuleOpenExceedsTotal Rule = "open_exceeds_total"
	RuleLineCount        Rule = "line_count"
	RuleLineFormat       Rule = "line_format"
	RuleSequence         Rule = "sequence"
	RuleClosedAnswer     Rule = "closed_answer_format"
	RuleOpenAnswer       Rule = "open_answer_format"
)

// Error kinds, matched with errors.Is against a *ValidationError.
var (
	ErrInvalidField       = errors.New("invalid field")
	ErrFormat             = errors.New("answer key format error")
	ErrSequence           = errors.New("answer key sequence error")
	ErrClosedAnswerFormat = errors.New("closed answer format error")
	ErrOpenAnswerFormat   = errors.New("open answer format error")
)

// ValidationError is a user-displayable authoring failure. Index is the
// 1-based question or line position when the rule concerns a single row,
// and Line carries the offending raw line when there is one.
type ValidationError struct {
	Rule    Rule
	Index   int
	Line    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is maps a rule to its error kind.
func (e *ValidationError) Is(target error) bool {
	switch e.Rule {
	case RuleLineCount, RuleLineFormat:
		return target == ErrFormat
	case RuleSequence:
		return target == ErrSequence
	case RuleClosedAnswer:
		return target == ErrClosedAnswerFormat
	case RuleOpenAnswer:
		return target == ErrOpenAnswerFormat
	default:
		return target == ErrInvalidField
	}
}

func invalid(rule Rule, format string, args ...any) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}
