package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04:05"

// AdminService backs the admin dashboard and member maintenance.
type AdminService struct {
	users     UserStore
	tests     TestStore
	results   ResultStore
	messages  MessageStore
	dashboard DashboardStore
	ranking   RankingStore
	auth      *AuthService
	cache     LeaderboardCache
	log       zerolog.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	users UserStore,
	tests TestStore,
	results ResultStore,
	messages MessageStore,
	dashboard DashboardStore,
	ranking RankingStore,
	auth *AuthService,
	cache LeaderboardCache,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:     users,
		tests:     tests,
		results:   results,
		messages:  messages,
		dashboard: dashboard,
		ranking:   ranking,
		auth:      auth,
		cache:     cache,
		log:       log.With().Str("component", "admin_service").Logger(),
	}
}

// Dashboard returns members with their history aggregates, every test, and
// the members who have a chat thread.
func (s *AdminService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	users, err := s.dashboard.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	tests, err := s.tests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	threads, err := s.messages.ListThreads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	d := &model.Dashboard{Users: users, Tests: tests, UsersWithThread: threads}
	if d.Users == nil {
		d.Users = []model.DashboardUser{}
	}
	if d.Tests == nil {
		d.Tests = []model.Test{}
	}
	if d.UsersWithThread == nil {
		d.UsersWithThread = []model.ThreadSummary{}
	}
	return d, nil
}

// ClearUserHistory deletes a member's results and empties their embedded
// history, which reopens every test for them.
func (s *AdminService) ClearUserHistory(ctx context.Context, userID int) error {
	if err := s.users.ClearHistory(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.invalidate(ctx)
	s.log.Info().Int("user_id", userID).Msg("User history cleared")
	return nil
}

// DeleteUser removes a member and ends their session.
func (s *AdminService) DeleteUser(ctx context.Context, userID int) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if s.auth != nil {
		if err := s.auth.RevokeUserSession(ctx, userID); err != nil {
			s.log.Warn().Err(err).Int("user_id", userID).Msg("Failed to revoke session of deleted user")
		}
	}
	s.invalidate(ctx)
	s.log.Info().Int("user_id", userID).Msg("User deleted")
	return nil
}

// ExportTestResults renders every result of a test as an xlsx workbook.
func (s *AdminService) ExportTestResults(ctx context.Context, testID uuid.UUID) ([]byte, string, error) {
	t, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrTestNotFound
		}
		return nil, "", err
	}
	rows, err := s.results.ListForTest(ctx, testID)
	if err != nil {
		return nil, "", err
	}

	headers := []string{"name", "email", "score", "passed", "mode", "duration_seconds", "submitted_at"}
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		duration := ""
		if r.DurationSeconds != nil {
			duration = fmt.Sprint(*r.DurationSeconds)
		}
		values = append(values, []any{
			r.UserName,
			r.UserEmail,
			r.Score,
			r.Score >= grading.PassScore,
			string(r.Mode),
			duration,
			r.CreatedAt.UTC().Format(exportTimeLayout),
		})
	}

	data, err := writeSheet(headers, values)
	if err != nil {
		return nil, "", err
	}
	return data, "results-" + slug(t.Title) + ".xlsx", nil
}

// ExportLeaderboard renders the global ranking as an xlsx workbook.
func (s *AdminService) ExportLeaderboard(ctx context.Context) ([]byte, error) {
	entries, err := s.ranking.Global(ctx)
	if err != nil {
		return nil, err
	}

	headers := []string{"rank", "user_id", "name", "avg_score", "tests_count"}
	values := make([][]any, 0, len(entries))
	for _, e := range entries {
		values = append(values, []any{e.Rank, e.UserID, e.Name, e.AvgScore, e.TestsCount})
	}
	return writeSheet(headers, values)
}

func (s *AdminService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateAll(ctx)
	}
}

func writeSheet(headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, values := range rows {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetColWidth(sheet, "A", last, 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "test"
	}
	return out
}
