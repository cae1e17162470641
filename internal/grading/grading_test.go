package grading

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKey = "1.A\n2.B\n3.C\n4.34\n5.7.5"

func TestParseAnswerKey(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		total    int
		wantRule Rule
		wantIdx  int
		wantKind error
	}{
		{name: "valid with blank lines and CRLF", text: "1.A\r\n\r\n2. B\n  3.   12,5  \n", total: 3},
		{name: "too few lines", text: "1.A\n2.B", total: 3, wantRule: RuleLineCount, wantKind: ErrFormat},
		{name: "too many lines", text: "1.A\n2.B\n3.C", total: 2, wantRule: RuleLineCount, wantKind: ErrFormat},
		{name: "missing dot", text: "1.A\n2 B", total: 2, wantRule: RuleLineFormat, wantIdx: 2, wantKind: ErrFormat},
		{name: "missing answer", text: "1.A\n2.", total: 2, wantRule: RuleLineFormat, wantIdx: 2, wantKind: ErrFormat},
		{name: "skipped index", text: "1.A\n3.B", total: 2, wantRule: RuleSequence, wantIdx: 2, wantKind: ErrSequence},
		{name: "duplicated index", text: "1.A\n1.B", total: 2, wantRule: RuleSequence, wantIdx: 2, wantKind: ErrSequence},
		{name: "reordered", text: "2.A\n1.B", total: 2, wantRule: RuleSequence, wantIdx: 1, wantKind: ErrSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, err := ParseAnswerKey(tt.text, tt.total)
			if tt.wantRule == "" {
				require.NoError(t, err)
				require.Len(t, lines, tt.total)
				for i, l := range lines {
					assert.Equal(t, i+1, l.Index)
				}
				return
			}

			require.Error(t, err)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantRule, ve.Rule)
			assert.Equal(t, tt.wantIdx, ve.Index)
			assert.ErrorIs(t, err, tt.wantKind)
		})
	}
}

func TestParseAnswerKey_TrimsAnswers(t *testing.T) {
	lines, err := ParseAnswerKey("1.   A  \n2.7.5", 2)
	require.NoError(t, err)
	assert.Equal(t, []AnswerLine{{Index: 1, Answer: "A"}, {Index: 2, Answer: "7.5"}}, lines)
}

func TestParseAnswerKey_NamesOffendingLine(t *testing.T) {
	_, err := ParseAnswerKey("1.A\nfoo", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "foo")
	assert.Contains(t, err.Error(), "line 2")
}

func validDraft() Draft {
	return Draft{
		Title:       "Algebra 1",
		PDFLink:     "https://example.com/a.pdf",
		Total:       5,
		Open:        2,
		AnswersText: sampleKey,
	}
}

func TestValidateAuthoring(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	tests := []struct {
		name     string
		mutate   func(d *Draft)
		wantRule Rule
		wantIdx  int
	}{
		{name: "valid", mutate: func(d *Draft) {}},
		{name: "missing title", mutate: func(d *Draft) { d.Title = "  " }, wantRule: RuleTitleRequired},
		{name: "missing pdf", mutate: func(d *Draft) { d.PDFLink = "" }, wantRule: RulePDFLinkRequired},
		{name: "zero total", mutate: func(d *Draft) { d.Total = 0 }, wantRule: RuleTotalMin},
		{name: "negative open", mutate: func(d *Draft) { d.Open = -1 }, wantRule: RuleOpenMin},
		{name: "non numeric timer", mutate: func(d *Draft) { d.Timer = "ten" }, wantRule: RuleTimerInvalid},
		{name: "negative timer", mutate: func(d *Draft) { d.Timer = "-5" }, wantRule: RuleTimerInvalid},
		{name: "open exceeds total", mutate: func(d *Draft) { d.Open = 6 }, wantRule: RuleOpenExceedsTotal},
		{name: "line count", mutate: func(d *Draft) { d.Total = 4; d.Open = 1 }, wantRule: RuleLineCount},
		{
			name:     "closed answer not a letter",
			mutate:   func(d *Draft) { d.AnswersText = "1.A\n2.E\n3.C\n4.34\n5.7.5" },
			wantRule: RuleClosedAnswer,
			wantIdx:  2,
		},
		{
			name:     "open answer without digit",
			mutate:   func(d *Draft) { d.AnswersText = "1.A\n2.B\n3.C\n4.34\n5.x" },
			wantRule: RuleOpenAnswer,
			wantIdx:  5,
		},
		{
			name:     "letter where open answer expected",
			mutate:   func(d *Draft) { d.Open = 3 },
			wantRule: RuleOpenAnswer,
			wantIdx:  3,
		},
		{
			name: "star window reversed",
			mutate: func(d *Draft) {
				d.IsStarEligible = true
				d.StarStart = &start
				d.StarEnd = &end
			},
			wantRule: RuleStarWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			got, err := ValidateAuthoring(d)
			if tt.wantRule == "" {
				require.NoError(t, err)
				assert.Equal(t, 3, got.ClosedCount)
				assert.Len(t, got.Lines, 5)
				return
			}

			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantRule, ve.Rule)
			assert.Equal(t, tt.wantIdx, ve.Index)
			assert.NotEmpty(t, ve.Error())
		})
	}
}

func TestValidateAuthoring_ClosedLettersAreCaseInsensitive(t *testing.T) {
	d := validDraft()
	d.AnswersText = "1.a\n2.b\n3.d\n4.34\n5.7.5"
	d.Timer = "45"

	got, err := ValidateAuthoring(d)
	require.NoError(t, err)
	require.NotNil(t, got.TimerMinutes)
	assert.Equal(t, 45, *got.TimerMinutes)
}

func TestValidateAuthoring_Boundaries(t *testing.T) {
	allOpen := Draft{Title: "t", PDFLink: "p", Total: 2, Open: 2, AnswersText: "1.12\n2.x=3"}
	got, err := ValidateAuthoring(allOpen)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ClosedCount)

	allClosed := Draft{Title: "t", PDFLink: "p", Total: 2, Open: 0, AnswersText: "1.A\n2.D"}
	got, err = ValidateAuthoring(allClosed)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ClosedCount)
}

func sampleTestKey() Key {
	return Key{Total: 5, ClosedCount: 3, OpenCount: 2, AnswersText: sampleKey}
}

func TestGrade_Scenario(t *testing.T) {
	out, err := Grade(sampleTestKey(), Submission{
		Closed: []string{"a", "B", "D"},
		Open:   []string{"34", "7,5"},
	})
	require.NoError(t, err)
	assert.Equal(t, &Outcome{Score: 80, Correct: 4, TotalClosed: 3, TotalQuestions: 5, Passed: true}, out)
}

func TestGrade_IsDeterministic(t *testing.T) {
	sub := Submission{Closed: []string{"A", "C", "C"}, Open: []string{"3 4", "7.50"}}
	first, err := Grade(sampleTestKey(), sub)
	require.NoError(t, err)
	second, err := Grade(sampleTestKey(), sub)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 4, first.Correct)
}

func TestGrade_DerivesClosedCount(t *testing.T) {
	k := sampleTestKey()
	k.ClosedCount = 0

	out, err := Grade(k, Submission{Closed: []string{"A", "B", "C"}})
	require.NoError(t, err)
	assert.Equal(t, 3, out.TotalClosed)
	assert.Equal(t, 60, out.Score)
	assert.True(t, out.Passed)
}

func TestGrade_Boundaries(t *testing.T) {
	allOpen := Key{Total: 2, OpenCount: 2, AnswersText: "1.12\n2.0,5"}
	out, err := Grade(allOpen, Submission{Open: []string{"12", "0.50"}})
	require.NoError(t, err)
	assert.Equal(t, 0, out.TotalClosed)
	assert.Equal(t, 100, out.Score)

	allClosed := Key{Total: 2, ClosedCount: 2, AnswersText: "1.A\n2.B"}
	out, err = Grade(allClosed, Submission{Closed: []string{"A"}, Open: []string{"B"}})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Correct)
	assert.Equal(t, 50, out.Score)
	assert.True(t, out.Passed)
}

func TestGrade_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		sub  Submission
		want error
	}{
		{name: "no total", key: Key{AnswersText: "1.A"}, want: ErrNotReady},
		{name: "no answers", key: Key{Total: 1, ClosedCount: 1}, want: ErrNotReady},
		{name: "inconsistent split", key: Key{Total: 2, OpenCount: 3, AnswersText: "1.A\n2.B"}, want: ErrNotReady},
		{name: "corrupt key", key: Key{Total: 2, ClosedCount: 2, AnswersText: "1.A\n3.B"}, want: ErrStoredDataCorrupt},
		{
			name: "empty once submission",
			key:  sampleTestKey(),
			sub:  Submission{Closed: []string{" ", ""}, Open: []string{"\t"}, RequireAnswer: true},
			want: ErrEmptySubmission,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Grade(tt.key, tt.sub)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGrade_BlankTimedSubmissionScoresZero(t *testing.T) {
	out, err := Grade(sampleTestKey(), Submission{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Score)
	assert.False(t, out.Passed)
}

func TestOpenMatches(t *testing.T) {
	tests := []struct {
		given, want string
		match       bool
	}{
		{"34", "34", true},
		{"34.0", "34", true},
		{" 3 4 ", "34", true},
		{"7,5", "7.5", true},
		{"-0,25", "-0.250", true},
		{"notanumber", "34", false},
		{"x=3", "x = 3", true},
		{"x=3", "x=4", false},
		{"", "34", false},
		{"0.1", "0.10000000001", false},
	}

	for _, tt := range tests {
		t.Run(tt.given+"_vs_"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.match, OpenMatches(tt.given, tt.want))
		})
	}
}

func intPtr(n int) *int { return &n }

func TestRankAttempts(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := []TimedAttempt{
		{UserID: 1, Score: 80, DurationSeconds: intPtr(600), CreatedAt: base},
		{UserID: 1, Score: 90, DurationSeconds: intPtr(900), CreatedAt: base.Add(time.Hour)},
		{UserID: 2, Score: 90, DurationSeconds: intPtr(500), CreatedAt: base.Add(2 * time.Hour)},
		{UserID: 3, Score: 90, CreatedAt: base},
		{UserID: 4, Score: 70, DurationSeconds: intPtr(100), CreatedAt: base},
	}

	standings := RankAttempts(attempts)
	require.Len(t, standings, 4)

	// User 1 keeps best score 90 and fastest duration 600.
	assert.Equal(t, []int{2, 1, 3, 4}, []int{standings[0].UserID, standings[1].UserID, standings[2].UserID, standings[3].UserID})
	assert.Equal(t, 600, *standings[1].BestDuration)
	assert.Nil(t, standings[2].BestDuration)
	assert.Equal(t, []int{3, 2, 1, 0}, []int{standings[0].Stars, standings[1].Stars, standings[2].Stars, standings[3].Stars})
	assert.Len(t, Winners(standings), 3)
}

func TestRankAttempts_TieBreaksAreDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	attempts := []TimedAttempt{
		{UserID: 9, Score: 50, DurationSeconds: intPtr(60), CreatedAt: base},
		{UserID: 5, Score: 50, DurationSeconds: intPtr(60), CreatedAt: base},
		{UserID: 7, Score: 50, DurationSeconds: intPtr(60), CreatedAt: base.Add(-time.Minute)},
	}

	standings := RankAttempts(attempts)
	assert.Equal(t, 7, standings[0].UserID)
	assert.Equal(t, 5, standings[1].UserID)
	assert.Equal(t, 9, standings[2].UserID)
}

func TestStarsForRank(t *testing.T) {
	assert.Equal(t, 3, StarsForRank(1))
	assert.Equal(t, 2, StarsForRank(2))
	assert.Equal(t, 1, StarsForRank(3))
	assert.Equal(t, 0, StarsForRank(4))
	assert.Equal(t, 0, StarsForRank(0))
}

func TestStarWindowState(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	w := StarWindow{Start: &start, End: &end}

	assert.Equal(t, WindowUpcoming, w.State(start.Add(-time.Second)))
	assert.Equal(t, WindowOpen, w.State(start))
	assert.Equal(t, WindowOpen, w.State(end))
	assert.Equal(t, WindowClosed, w.State(end.Add(time.Second)))
	assert.Equal(t, WindowOpen, StarWindow{}.State(start))
}
