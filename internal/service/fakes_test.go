package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
)

// In-memory stores mirroring the constraints the database enforces.

type fakeUsers struct {
	mu     sync.Mutex
	byID   map[int]*model.User
	nextID int
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byID: map[int]*model.User{}}
	for i := range users {
		u := users[i]
		f.byID[u.ID] = &u
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id int) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) ClearHistory(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TestsTaken = nil
	return nil
}

func (f *fakeUsers) balance(id int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].StarsBalance
}

type fakeTests struct {
	byID    map[uuid.UUID]*model.Test
	settled map[uuid.UUID]time.Time
}

func newFakeTests(tests ...*model.Test) *fakeTests {
	f := &fakeTests{byID: map[uuid.UUID]*model.Test{}, settled: map[uuid.UUID]time.Time{}}
	for _, t := range tests {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		f.byID[t.ID] = t
	}
	return f
}

func (f *fakeTests) GetByID(_ context.Context, id uuid.UUID) (*model.Test, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTests) List(_ context.Context) ([]model.Test, error) {
	out := make([]model.Test, 0, len(f.byID))
	for _, t := range f.byID {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeTests) ListStarEligible(ctx context.Context) ([]model.Test, error) {
	all, _ := f.List(ctx)
	var out []model.Test
	for _, t := range all {
		if t.IsStarEligible {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTests) ListUnsettledClosedWindows(ctx context.Context, now time.Time) ([]model.Test, error) {
	all, _ := f.ListStarEligible(ctx)
	var out []model.Test
	for _, t := range all {
		if _, done := f.settled[t.ID]; done {
			continue
		}
		if t.StarEndDate != nil && t.StarEndDate.Before(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTests) MarkSettled(_ context.Context, id uuid.UUID, at time.Time) error {
	f.settled[id] = at
	return nil
}

func (f *fakeTests) Create(_ context.Context, t *model.Test) error {
	t.ID = uuid.New()
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTests) Update(_ context.Context, t *model.Test) error {
	if _, ok := f.byID[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTests) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeResults struct {
	mu      sync.Mutex
	users   *fakeUsers
	results []model.Result
	nextID  int64
	clock   func() time.Time
}

func newFakeResults(users *fakeUsers, clock func() time.Time) *fakeResults {
	return &fakeResults{users: users, clock: clock}
}

func (f *fakeResults) RecordAttempt(_ context.Context, res *model.Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res.Exclusive {
		for _, r := range f.results {
			if r.Exclusive && r.UserID == res.UserID && r.TestID == res.TestID && r.Mode == res.Mode {
				return repository.ErrAlreadyAttempted
			}
		}
	}
	f.nextID++
	res.ID = f.nextID
	if res.CreatedAt.IsZero() {
		res.CreatedAt = f.clock()
	}
	f.results = append(f.results, *res)

	if f.users != nil {
		f.users.mu.Lock()
		if u, ok := f.users.byID[res.UserID]; ok {
			u.TestsTaken = append(u.TestsTaken, model.HistoryEntry{TestID: res.TestID, Score: res.Score, Date: res.CreatedAt})
		}
		f.users.mu.Unlock()
	}
	return nil
}

func (f *fakeResults) HasAttempt(_ context.Context, userID int, testID uuid.UUID, mode model.AttemptMode) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.UserID == userID && r.TestID == testID && r.Mode == mode {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeResults) Latest(_ context.Context, userID int, testID uuid.UUID) (*model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.results) - 1; i >= 0; i-- {
		if r := f.results[i]; r.UserID == userID && r.TestID == testID {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeResults) BestScores(_ context.Context, userID int) (map[uuid.UUID]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	best := map[uuid.UUID]int{}
	for _, r := range f.results {
		if r.UserID != userID {
			continue
		}
		if cur, ok := best[r.TestID]; !ok || r.Score > cur {
			best[r.TestID] = r.Score
		}
	}
	return best, nil
}

func (f *fakeResults) ListByUser(_ context.Context, userID int) ([]model.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Result
	for _, r := range f.results {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeResults) TimedAttempts(_ context.Context, testID uuid.UUID, until *time.Time) ([]grading.TimedAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []grading.TimedAttempt
	for _, r := range f.results {
		if r.TestID != testID || r.Mode != model.AttemptModeTimed {
			continue
		}
		if until != nil && r.CreatedAt.After(*until) {
			continue
		}
		out = append(out, grading.TimedAttempt{UserID: r.UserID, Score: r.Score, DurationSeconds: r.DurationSeconds, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (f *fakeResults) ListForTest(_ context.Context, testID uuid.UUID) ([]repository.ResultExportRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.ResultExportRow
	for _, r := range f.results {
		if r.TestID != testID {
			continue
		}
		row := repository.ResultExportRow{Result: r}
		if f.users != nil {
			if u, ok := f.users.byID[r.UserID]; ok {
				row.UserName, row.UserEmail = u.Name, u.Email
			}
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeLedger struct {
	mu      sync.Mutex
	users   *fakeUsers
	txs     []model.StarTransaction
	seasons []model.StarSeason
	rewards []model.StarReward
}

func newFakeLedger(users *fakeUsers) *fakeLedger {
	return &fakeLedger{users: users}
}

func (f *fakeLedger) Grant(_ context.Context, g model.StarGrant) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.txs {
		if tx.UserID == g.UserID && tx.GrantKey != nil && *tx.GrantKey == g.GrantKey {
			return false, nil
		}
	}
	f.users.mu.Lock()
	u, ok := f.users.byID[g.UserID]
	if ok {
		u.StarsBalance += g.Amount
	}
	f.users.mu.Unlock()
	if !ok {
		return false, repository.ErrNotFound
	}
	key := g.GrantKey
	f.txs = append(f.txs, model.StarTransaction{ID: int64(len(f.txs) + 1), UserID: g.UserID, Amount: g.Amount, Reason: g.Reason, GrantKey: &key})
	return true, nil
}

func (f *fakeLedger) Redeem(_ context.Context, userID int, reward *model.StarReward) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	u, ok := f.users.byID[userID]
	if !ok || u.StarsBalance < reward.CostStars {
		return 0, repository.ErrInsufficientStars
	}
	u.StarsBalance -= reward.CostStars
	f.txs = append(f.txs, model.StarTransaction{ID: int64(len(f.txs) + 1), UserID: userID, Amount: -reward.CostStars, Reason: model.StarReasonRewardRedeem})
	return u.StarsBalance, nil
}

func (f *fakeLedger) ListTransactions(_ context.Context, userID, limit int) ([]model.StarTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StarTransaction
	for i := len(f.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.txs[i].UserID == userID {
			out = append(out, f.txs[i])
		}
	}
	return out, nil
}

func (f *fakeLedger) CreateSeason(_ context.Context, s *model.StarSeason) error {
	if s.IsActive {
		for i := range f.seasons {
			f.seasons[i].IsActive = false
		}
	}
	s.ID = len(f.seasons) + 1
	f.seasons = append(f.seasons, *s)
	return nil
}

func (f *fakeLedger) GetSeason(_ context.Context, id int) (*model.StarSeason, error) {
	for _, s := range f.seasons {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLedger) ListSeasons(_ context.Context) ([]model.StarSeason, error) {
	return f.seasons, nil
}

func (f *fakeLedger) ActivateSeason(_ context.Context, id int) error {
	found := false
	for i := range f.seasons {
		f.seasons[i].IsActive = f.seasons[i].ID == id
		found = found || f.seasons[i].ID == id
	}
	if !found {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeLedger) ListRewards(_ context.Context, activeOnly bool) ([]model.StarReward, error) {
	var out []model.StarReward
	for _, rw := range f.rewards {
		if !activeOnly || rw.IsActive {
			out = append(out, rw)
		}
	}
	return out, nil
}

func (f *fakeLedger) GetReward(_ context.Context, id int) (*model.StarReward, error) {
	for _, rw := range f.rewards {
		if rw.ID == id {
			return &rw, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeLedger) CreateReward(_ context.Context, rw *model.StarReward) error {
	rw.ID = len(f.rewards) + 1
	f.rewards = append(f.rewards, *rw)
	return nil
}

func (f *fakeLedger) grantsFor(userID int) []model.StarTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.StarTransaction
	for _, tx := range f.txs {
		if tx.UserID == userID && tx.Amount > 0 {
			out = append(out, tx)
		}
	}
	return out
}

type fakeRanking struct {
	global  []model.LeaderboardEntry
	season  []repository.SeasonStanding
	names   map[int]string
	globalN int
}

func (f *fakeRanking) Global(context.Context) ([]model.LeaderboardEntry, error) {
	f.globalN++
	return f.global, nil
}

func (f *fakeRanking) Season(context.Context, time.Time, time.Time) ([]repository.SeasonStanding, error) {
	return f.season, nil
}

func (f *fakeRanking) Names(_ context.Context, ids []int) (map[int]string, error) {
	out := map[int]string{}
	for _, id := range ids {
		if n, ok := f.names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

type fakeMessages struct {
	msgs []model.Message
}

func (f *fakeMessages) Create(_ context.Context, m *model.Message) error {
	m.ID = int64(len(f.msgs) + 1)
	m.SeenByUser = m.From == model.MessageFromUser
	m.SeenByAdmin = m.From == model.MessageFromAdmin
	f.msgs = append(f.msgs, *m)
	return nil
}

func (f *fakeMessages) ListThread(_ context.Context, userID int) ([]model.Message, error) {
	var out []model.Message
	for _, m := range f.msgs {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkSeen(_ context.Context, userID int, reader model.MessageSender) error {
	for i := range f.msgs {
		m := &f.msgs[i]
		if m.UserID != userID || m.From == reader {
			continue
		}
		if reader == model.MessageFromUser {
			m.SeenByUser = true
		} else {
			m.SeenByAdmin = true
		}
	}
	return nil
}

func (f *fakeMessages) ListThreads(context.Context) ([]model.ThreadSummary, error) {
	unread := map[int]int{}
	for _, m := range f.msgs {
		if _, ok := unread[m.UserID]; !ok {
			unread[m.UserID] = 0
		}
		if m.From == model.MessageFromUser && !m.SeenByAdmin {
			unread[m.UserID]++
		}
	}
	var out []model.ThreadSummary
	for id, n := range unread {
		out = append(out, model.ThreadSummary{UserID: id, Unread: n})
	}
	return out, nil
}

type fakeVideos struct {
	topics  []model.VideoTopic
	lessons []model.VideoLesson
}

func (f *fakeVideos) ListTopics(context.Context) ([]model.VideoTopic, error) {
	return append([]model.VideoTopic(nil), f.topics...), nil
}

func (f *fakeVideos) ListLessons(context.Context) ([]model.VideoLesson, error) {
	return f.lessons, nil
}

func (f *fakeVideos) CreateTopic(_ context.Context, t *model.VideoTopic) error {
	t.ID = len(f.topics) + 1
	f.topics = append(f.topics, *t)
	return nil
}

func (f *fakeVideos) CreateLesson(_ context.Context, l *model.VideoLesson) error {
	l.ID = len(f.lessons) + 1
	f.lessons = append(f.lessons, *l)
	return nil
}

func (f *fakeVideos) TopicExists(_ context.Context, id int) (bool, error) {
	for _, t := range f.topics {
		if t.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeDashboard struct {
	users []model.DashboardUser
}

func (f *fakeDashboard) ListUsers(context.Context) ([]model.DashboardUser, error) {
	return f.users, nil
}

type fakeCache struct {
	invalidated []uuid.UUID
	cleared     int
}

func (f *fakeCache) Invalidate(_ context.Context, testID uuid.UUID) {
	f.invalidated = append(f.invalidated, testID)
}

func (f *fakeCache) InvalidateAll(context.Context) { f.cleared++ }

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }
