package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/streakscore/internal/clock"
	milestonedomain "github.com/smallbiznis/streakscore/internal/milestone/domain"
	milestonerepo "github.com/smallbiznis/streakscore/internal/milestone/repository"
	scoredomain "github.com/smallbiznis/streakscore/internal/score/domain"
	scorerepo "github.com/smallbiznis/streakscore/internal/score/repository"
	"github.com/smallbiznis/streakscore/internal/testutil"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var today = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	repo scoredomain.Repository
	svc  *Service
}

func newFixture(t *testing.T, milestones ...milestonedomain.MilestoneConfig) *fixture {
	t.Helper()

	db := testutil.OpenDB(t)
	node := testutil.Node(t)
	repo := scorerepo.Provide()
	msRepo := milestonerepo.Provide()

	for _, m := range milestones {
		m.ID = node.Generate()
		m.CreatedAt = today
		require.NoError(t, msRepo.Insert(context.Background(), db, &m))
	}

	svc := New(Params{
		DB:            db,
		Log:           zaptest.NewLogger(t),
		GenID:         node,
		Clock:         clock.NewFakeClock(today.Add(9 * time.Hour)),
		Repo:          repo,
		MilestoneRepo: msRepo,
	}).(*Service)

	return &fixture{db: db, node: node, repo: repo, svc: svc}
}

func (f *fixture) seed(t *testing.T, userID string, day time.Time, streak int) {
	t.Helper()
	require.NoError(t, f.repo.Insert(context.Background(), f.db, &scoredomain.DailyScore{
		ID:            f.node.Generate(),
		UserID:        userID,
		Day:           day,
		BaseScore:     1,
		StreakScore:   1,
		TotalScore:    2,
		CurrentStreak: streak,
		RecordType:    scoredomain.RecordTypeRecord,
		BonusDetails:  datatypes.JSON(`[]`),
		CreatedAt:     day,
	}))
}

func (f *fixture) count(t *testing.T, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&scoredomain.DailyScore{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestCalculateDailyScore_FirstDay(t *testing.T) {
	f := newFixture(t)

	score, err := f.svc.CalculateDailyScore(context.Background(), "u1", today, scoredomain.RecordTypeRecord)
	require.NoError(t, err)

	assert.Equal(t, 1, score.CurrentStreak)
	assert.Equal(t, 1, score.BaseScore)
	assert.Equal(t, 1, score.StreakScore)
	assert.Equal(t, 0, score.BonusScore)
	assert.Equal(t, 2, score.TotalScore)
	assert.Equal(t, scoredomain.RecordTypeRecord, score.RecordType)

	details, err := score.Details()
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestCalculateDailyScore_MilestoneOnTenthDay(t *testing.T) {
	f := newFixture(t,
		milestonedomain.MilestoneConfig{StreakDays: 7, BonusScore: 3, Name: "week"},
		milestonedomain.MilestoneConfig{StreakDays: 10, BonusScore: 5, Name: "ten days"},
	)
	f.seed(t, "u1", calendar.Previous(today), 9)

	score, err := f.svc.CalculateDailyScore(context.Background(), "u1", today, scoredomain.RecordTypeRecord)
	require.NoError(t, err)

	assert.Equal(t, 10, score.CurrentStreak)
	assert.Equal(t, 5, score.BonusScore)
	assert.Equal(t, 7, score.TotalScore)

	details, err := score.Details()
	require.NoError(t, err)
	assert.Equal(t, []milestonedomain.BonusDetail{{Milestone: 10, Score: 5, Name: "ten days"}}, details)
}

func TestCalculateDailyScore_GapResetsStreak(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u1", calendar.AddDays(today, -2), 5)

	score, err := f.svc.CalculateDailyScore(context.Background(), "u1", today, scoredomain.RecordTypeCheckin)
	require.NoError(t, err)

	assert.Equal(t, 1, score.CurrentStreak)
	assert.Equal(t, scoredomain.RecordTypeCheckin, score.RecordType)
}

func TestCalculateDailyScore_SecondCallReturnsStoredRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.CalculateDailyScore(ctx, "u1", today, scoredomain.RecordTypeCheckin)
	require.NoError(t, err)
	second, err := f.svc.CalculateDailyScore(ctx, "u1", today.Add(15*time.Hour), scoredomain.RecordTypeRecord)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, scoredomain.RecordTypeCheckin, second.RecordType)
	assert.Equal(t, int64(1), f.count(t, "u1"))
}

// staleRepo hides the stored row from the first lookup, the way a concurrent
// caller sees the table just before the other insert commits.
type staleRepo struct {
	scoredomain.Repository

	mu     sync.Mutex
	hidden bool
}

func (r *staleRepo) FindByUserDay(ctx context.Context, db *gorm.DB, userID string, day time.Time) (*scoredomain.DailyScore, error) {
	r.mu.Lock()
	hide := !r.hidden
	r.hidden = true
	r.mu.Unlock()
	if hide {
		return nil, nil
	}
	return r.Repository.FindByUserDay(ctx, db, userID, day)
}

func TestCalculateDailyScore_DuplicateInsertReturnsWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	winner, err := f.svc.CalculateDailyScore(ctx, "u1", today, scoredomain.RecordTypeRecord)
	require.NoError(t, err)

	f.svc.repo = &staleRepo{Repository: f.repo}
	loser, err := f.svc.CalculateDailyScore(ctx, "u1", today, scoredomain.RecordTypeCheckin)
	require.NoError(t, err)

	assert.Equal(t, winner.ID, loser.ID)
	assert.Equal(t, scoredomain.RecordTypeRecord, loser.RecordType)
	assert.Equal(t, int64(1), f.count(t, "u1"))
}

func TestCalculateDailyScore_ConcurrentCallersShareOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const callers = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		ids   = make([]snowflake.ID, callers)
		errs  = make([]error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			recordType := scoredomain.RecordTypeRecord
			if i%2 == 1 {
				recordType = scoredomain.RecordTypeCheckin
			}
			score, err := f.svc.CalculateDailyScore(ctx, "u1", today, recordType)
			errs[i] = err
			if score != nil {
				ids[i] = score.ID
			}
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i], "caller %d", i)
		assert.Equal(t, ids[0], ids[i], "caller %d", i)
	}
	assert.NotZero(t, ids[0])
	assert.Equal(t, int64(1), f.count(t, "u1"))
}

func TestCalculateDailyScore_StreakMonotonicity(t *testing.T) {
	f := newFixture(t,
		milestonedomain.MilestoneConfig{StreakDays: 3, BonusScore: 1, Name: "three"},
	)
	ctx := context.Background()
	start := calendar.AddDays(today, -9)

	// active every day except the sixth
	var prev *scoredomain.DailyScore
	for i := 0; i < 10; i++ {
		if i == 5 {
			prev = nil
			continue
		}
		day := calendar.AddDays(start, i)
		score, err := f.svc.CalculateDailyScore(ctx, "u1", day, scoredomain.RecordTypeRecord)
		require.NoError(t, err)

		if prev == nil {
			assert.Equal(t, 1, score.CurrentStreak, "day %d", i)
		} else {
			assert.Equal(t, prev.CurrentStreak+1, score.CurrentStreak, "day %d", i)
		}
		if score.CurrentStreak == 3 {
			assert.Equal(t, 1, score.BonusScore, "day %d", i)
		} else {
			assert.Zero(t, score.BonusScore, "day %d", i)
		}
		prev = score
	}
	assert.Equal(t, int64(9), f.count(t, "u1"))
}

func TestCalculateDailyScore_InvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CalculateDailyScore(ctx, " ", today, scoredomain.RecordTypeRecord)
	assert.ErrorIs(t, err, scoredomain.ErrInvalidUser)

	_, err = f.svc.CalculateDailyScore(ctx, "u1", time.Time{}, scoredomain.RecordTypeRecord)
	assert.ErrorIs(t, err, scoredomain.ErrInvalidDay)

	_, err = f.svc.CalculateDailyScore(ctx, "u1", today, scoredomain.RecordType("bonus"))
	assert.ErrorIs(t, err, scoredomain.ErrInvalidRecordType)

	assert.Zero(t, f.count(t, "u1"))
}

func TestGetDailyScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetDailyScore(ctx, "u1", today)
	assert.ErrorIs(t, err, scoredomain.ErrNotFound)

	f.seed(t, "u1", today, 4)
	score, err := f.svc.GetDailyScore(ctx, "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 4, score.CurrentStreak)
}

func TestResolveStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	streak, err := f.svc.ResolveStreak(ctx, "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	f.seed(t, "u1", calendar.Previous(today), 6)
	streak, err = f.svc.ResolveStreak(ctx, "u1", today)
	require.NoError(t, err)
	assert.Equal(t, 7, streak)

	streak, err = f.svc.ResolveStreak(ctx, "u1", calendar.AddDays(today, 2))
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}
