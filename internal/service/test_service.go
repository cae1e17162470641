package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
)

var ErrTestNotFound = errors.New("test not found")

// TestService handles test authoring and the member-facing test catalog.
type TestService struct {
	tests   TestStore
	results ResultStore
	cache   LeaderboardCache
	now     func() time.Time
}

// NewTestService creates a new TestService.
// cache may be nil.
func NewTestService(tests TestStore, results ResultStore, cache LeaderboardCache) *TestService {
	return &TestService{tests: tests, results: results, cache: cache, now: time.Now}
}

// Create validates a draft and stores it.
func (s *TestService) Create(ctx context.Context, req model.UpsertTestRequest) (*model.Test, error) {
	t, err := buildTest(req)
	if err != nil {
		return nil, err
	}
	if err := s.tests.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update validates a draft and replaces the stored test. The rules are the
// same as for Create.
func (s *TestService) Update(ctx context.Context, id uuid.UUID, req model.UpsertTestRequest) (*model.Test, error) {
	t, err := buildTest(req)
	if err != nil {
		return nil, err
	}
	t.ID = id
	if err := s.tests.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	s.invalidate(ctx, id)
	return t, nil
}

// Delete removes a test along with its results and history entries.
func (s *TestService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tests.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTestNotFound
		}
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *TestService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

// Get retrieves a test including its answer key.
func (s *TestService) Get(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t, err := s.tests.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTestNotFound
	}
	return t, err
}

// ListAll returns every test including answer keys, for admins.
func (s *TestService) ListAll(ctx context.Context) ([]model.Test, error) {
	return s.tests.List(ctx)
}

// ListForUser returns the catalog with the member's best score per test.
func (s *TestService) ListForUser(ctx context.Context, userID int) ([]model.TestSummary, error) {
	tests, err := s.tests.List(ctx)
	if err != nil {
		return nil, err
	}

	best := map[uuid.UUID]int{}
	if userID != 0 {
		if best, err = s.results.BestScores(ctx, userID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	out := make([]model.TestSummary, 0, len(tests))
	for i := range tests {
		sum, err := Summarize(&tests[i], now)
		if err != nil {
			return nil, err
		}
		if score, ok := best[tests[i].ID]; ok {
			sum.BestScore = &score
		}
		out = append(out, sum)
	}
	return out, nil
}

// ListStarTests returns star-eligible tests with their window state.
func (s *TestService) ListStarTests(ctx context.Context) ([]model.TestSummary, error) {
	tests, err := s.tests.ListStarEligible(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.TestSummary, 0, len(tests))
	for i := range tests {
		sum, err := Summarize(&tests[i], now)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

// LatestResult returns the member's most recent attempt of a test, if any.
func (s *TestService) LatestResult(ctx context.Context, userID int, testID uuid.UUID) (*model.LatestResultResponse, error) {
	t, err := s.Get(ctx, testID)
	if err != nil {
		return nil, err
	}

	res, err := s.results.Latest(ctx, userID, testID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	sum, err := Summarize(t, s.now())
	if err != nil {
		return nil, err
	}
	out := &model.LatestResultResponse{Test: sum}
	if res != nil {
		out.Result = res
		out.Passed = res.Score >= grading.PassScore
	}
	return out, nil
}

// Summarize maps a test to its member-facing view, dropping the answer key.
func Summarize(t *model.Test, now time.Time) (model.TestSummary, error) {
	var sum model.TestSummary
	if err := copier.Copy(&sum, t); err != nil {
		return sum, fmt.Errorf("summarize test %s: %w", t.ID, err)
	}
	if sum.ClosedCount == 0 {
		sum.ClosedCount = grading.Key{Total: t.TotalQuestions, OpenCount: t.OpenCount}.ClosedSlots()
	}
	if t.IsStarEligible {
		sum.WindowState = string(starWindow(t).State(now))
	}
	return sum, nil
}

func starWindow(t *model.Test) grading.StarWindow {
	return grading.StarWindow{Start: t.StarStartDate, End: t.StarEndDate}
}

func buildTest(req model.UpsertTestRequest) (*model.Test, error) {
	authored, err := grading.ValidateAuthoring(grading.Draft{
		Title:          req.Title,
		PDFLink:        req.PDFLink,
		Total:          req.TotalQuestions,
		Open:           req.OpenCount,
		AnswersText:    req.AnswersText,
		Timer:          string(req.TimerMinutes),
		IsStarEligible: req.IsStarEligible,
		StarStart:      req.StarStartDate,
		StarEnd:        req.StarEndDate,
	})
	if err != nil {
		return nil, err
	}

	t := &model.Test{
		Title:          strings.TrimSpace(req.Title),
		PDFLink:        strings.TrimSpace(req.PDFLink),
		TotalQuestions: req.TotalQuestions,
		ClosedCount:    authored.ClosedCount,
		OpenCount:      req.OpenCount,
		AnswersText:    strings.TrimSpace(req.AnswersText),
		TimerMinutes:   authored.TimerMinutes,
		IsStarEligible: req.IsStarEligible,
	}
	if v := strings.TrimSpace(req.VideoLink); v != "" {
		t.VideoLink = &v
	}
	if req.IsStarEligible {
		t.StarStartDate = req.StarStartDate
		t.StarEndDate = req.StarEndDate
	}
	return t, nil
}
