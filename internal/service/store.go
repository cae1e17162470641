package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
)

// Storage contracts consumed by the services. The pgx repositories in
// internal/repository satisfy them.

type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int) error
	ClearHistory(ctx context.Context, id int) error
}

type TestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error)
	List(ctx context.Context) ([]model.Test, error)
	ListStarEligible(ctx context.Context) ([]model.Test, error)
	ListUnsettledClosedWindows(ctx context.Context, now time.Time) ([]model.Test, error)
	MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) error
	Create(ctx context.Context, t *model.Test) error
	Update(ctx context.Context, t *model.Test) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ResultStore interface {
	RecordAttempt(ctx context.Context, res *model.Result) error
	HasAttempt(ctx context.Context, userID int, testID uuid.UUID, mode model.AttemptMode) (bool, error)
	Latest(ctx context.Context, userID int, testID uuid.UUID) (*model.Result, error)
	BestScores(ctx context.Context, userID int) (map[uuid.UUID]int, error)
	ListByUser(ctx context.Context, userID int) ([]model.Result, error)
	TimedAttempts(ctx context.Context, testID uuid.UUID, until *time.Time) ([]grading.TimedAttempt, error)
	ListForTest(ctx context.Context, testID uuid.UUID) ([]repository.ResultExportRow, error)
}

type LedgerStore interface {
	Grant(ctx context.Context, g model.StarGrant) (bool, error)
	Redeem(ctx context.Context, userID int, reward *model.StarReward) (int, error)
	ListTransactions(ctx context.Context, userID, limit int) ([]model.StarTransaction, error)

	CreateSeason(ctx context.Context, s *model.StarSeason) error
	GetSeason(ctx context.Context, id int) (*model.StarSeason, error)
	ListSeasons(ctx context.Context) ([]model.StarSeason, error)
	ActivateSeason(ctx context.Context, id int) error

	ListRewards(ctx context.Context, activeOnly bool) ([]model.StarReward, error)
	GetReward(ctx context.Context, id int) (*model.StarReward, error)
	CreateReward(ctx context.Context, rw *model.StarReward) error
}

type RankingStore interface {
	Global(ctx context.Context) ([]model.LeaderboardEntry, error)
	Season(ctx context.Context, start, end time.Time) ([]repository.SeasonStanding, error)
	Names(ctx context.Context, ids []int) (map[int]string, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	ListThread(ctx context.Context, userID int) ([]model.Message, error)
	MarkSeen(ctx context.Context, userID int, reader model.MessageSender) error
	ListThreads(ctx context.Context) ([]model.ThreadSummary, error)
}

type VideoStore interface {
	ListTopics(ctx context.Context) ([]model.VideoTopic, error)
	ListLessons(ctx context.Context) ([]model.VideoLesson, error)
	CreateTopic(ctx context.Context, t *model.VideoTopic) error
	CreateLesson(ctx context.Context, l *model.VideoLesson) error
	TopicExists(ctx context.Context, id int) (bool, error)
}

type DashboardStore interface {
	ListUsers(ctx context.Context) ([]model.DashboardUser, error)
}
