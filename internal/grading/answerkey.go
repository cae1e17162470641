package grading

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	lineBreak   = regexp.MustCompile(`\r?\n`)
	linePattern = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)
)

// AnswerLine is one parsed row of an answer key.
type AnswerLine struct {
	Index  int    `json:"index"`
	Answer string `json:"answer"`
}

// ParseAnswerKey parses a newline-delimited answer key of the form
// "1.A\n2.B\n3.34" into exactly total ordered lines. Blank lines are ignored.
// The first failing row is reported; nothing is accumulated.
func ParseAnswerKey(text string, total int) ([]AnswerLine, error) {
	lines := splitLines(text)

	if len(lines) != total {
		return nil, invalid(RuleLineCount, "answer key must have exactly %d lines, got %d", total, len(lines))
	}

	parsed := make([]AnswerLine, 0, total)
	for i, line := range lines {
		pos := i + 1

		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			return nil, rowError(RuleLineFormat, pos, line,
				"line %d has an invalid format: %q (expected \"<number>. <answer>\")", pos, line)
		}

		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, rowError(RuleLineFormat, pos, line, "line %d has an invalid question number: %q", pos, line)
		}
		if n != pos {
			return nil, rowError(RuleSequence, pos, line, "line %d must start with \"%d.\", got %q", pos, pos, line)
		}

		parsed = append(parsed, AnswerLine{Index: n, Answer: strings.TrimSpace(m[2])})
	}

	return parsed, nil
}

func rowError(rule Rule, index int, line, format string, args ...any) *ValidationError {
	e := invalid(rule, format, args...)
	e.Index = index
	e.Line = line
	return e
}

func splitLines(text string) []string {
	raw := lineBreak.Split(text, -1)
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
