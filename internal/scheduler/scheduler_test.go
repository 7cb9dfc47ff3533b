package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	branchdomain "github.com/smallbiznis/streakscore/internal/branch/domain"
	"github.com/smallbiznis/streakscore/internal/clock"
	leaderboarddomain "github.com/smallbiznis/streakscore/internal/leaderboard/domain"
	ledgerdomain "github.com/smallbiznis/streakscore/internal/ledger/domain"
	"github.com/smallbiznis/streakscore/internal/lock"
	obsmetrics "github.com/smallbiznis/streakscore/internal/observability/metrics"
	summarydomain "github.com/smallbiznis/streakscore/internal/summary/domain"
	"github.com/smallbiznis/streakscore/pkg/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

type stubBranchSvc struct {
	branchdomain.Service
	rec *recorder
	err error
}

func (s *stubBranchSvc) AggregateBranchScores(_ context.Context, day time.Time) ([]branchdomain.BranchScoreDaily, error) {
	s.rec.add("branch:" + calendar.Format(day))
	if s.err != nil {
		return nil, s.err
	}
	return []branchdomain.BranchScoreDaily{{BranchCode: "A", Day: day, Rank: 1}}, nil
}

type stubLeaderboardSvc struct {
	leaderboarddomain.Service
	rec *recorder
}

func (s *stubLeaderboardSvc) BuildLeaderboardSnapshot(_ context.Context, day time.Time) (*leaderboarddomain.Snapshot, error) {
	s.rec.add("leaderboard:" + calendar.Format(day))
	return &leaderboarddomain.Snapshot{Day: day, TopUsers: []leaderboarddomain.UserRank{}, TopBranches: []leaderboarddomain.BranchRank{}}, nil
}

type stubSummarySvc struct {
	summarydomain.Service
	rec  *recorder
	fail string
}

func (s *stubSummarySvc) ReconcileDailySummary(_ context.Context, userID string, day time.Time) (*summarydomain.DailySummary, error) {
	s.rec.add("summary:" + userID + ":" + calendar.Format(day))
	if userID == s.fail {
		return nil, errors.New("write failed")
	}
	return &summarydomain.DailySummary{UserID: userID, Day: day}, nil
}

type stubLedgerRepo struct {
	ledgerdomain.Repository
	keys []ledgerdomain.UserDay
}

func (s *stubLedgerRepo) ListUserDays(_ context.Context, _ *gorm.DB, from, to time.Time) ([]ledgerdomain.UserDay, error) {
	var out []ledgerdomain.UserDay
	for _, k := range s.keys {
		if !k.Day.Before(from) && !k.Day.After(to) {
			out = append(out, k)
		}
	}
	return out, nil
}

type heldLocker struct{}

func (heldLocker) TryLock(context.Context, string, time.Duration) (lock.Lease, bool, error) {
	return nil, false, nil
}

type testScheduler struct {
	*Scheduler
	rec      *recorder
	branch   *stubBranchSvc
	registry *prometheus.Registry
}

// newTestScheduler wires stubs and a private metrics registry for one test.
func newTestScheduler(t *testing.T, now time.Time, cfg Config) *testScheduler {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	t.Cleanup(swapPrometheusRegistry(registry))
	obsmetrics.SchedulerWithConfig(obsmetrics.Config{
		ServiceName: "streakscore",
		Environment: "test",
	})

	rec := &recorder{}
	branch := &stubBranchSvc{rec: rec}
	s := &Scheduler{
		db:             &gorm.DB{},
		log:            zap.NewNop(),
		cfg:            cfg.withDefaults(),
		genID:          node,
		clock:          clock.NewFakeClock(now),
		locker:         lock.NoopLocker{},
		branchSvc:      branch,
		leaderboardSvc: &stubLeaderboardSvc{rec: rec},
		summarySvc:     &stubSummarySvc{rec: rec},
		ledgerRepo:     &stubLedgerRepo{},
	}
	return &testScheduler{Scheduler: s, rec: rec, branch: branch, registry: registry}
}

func TestRunJobTimeoutDoesNotReturnErrorAndIncrementsTimeout(t *testing.T) {
	s := newTestScheduler(t, time.Time{}, Config{})
	err := s.runJob(context.Background(), "timeout_job", "2024-06-01", 5*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)

	labels := map[string]string{
		"service": "streakscore",
		"env":     "test",
		"job":     "timeout_job",
	}
	assert.Equal(t, float64(1), getCounterValue(t, s.registry, "streakscore_scheduler_job_timeouts_total", labels))

	errorLabels := map[string]string{
		"service": "streakscore",
		"env":     "test",
		"job":     "timeout_job",
		"reason":  obsmetrics.SchedulerJobReasonDeadlineExceeded,
	}
	assert.Equal(t, float64(1), getCounterValue(t, s.registry, "streakscore_scheduler_job_errors_total", errorLabels))
}

func TestRunJobWrapsHardErrors(t *testing.T) {
	s := newTestScheduler(t, time.Time{}, Config{})
	boom := errors.New("boom")

	err := s.runJob(context.Background(), "some_job", "", time.Second, func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "some_job: boom")
}

func TestDailyBatchJobUsesYesterdayInConfiguredZone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	// 2024-06-02 01:00 in Jakarta, still 2024-06-01 in UTC
	now := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	s := newTestScheduler(t, now, Config{Location: jakarta})

	require.NoError(t, s.DailyBatchJob(context.Background()))

	assert.Equal(t, []string{"branch:2024-06-01", "leaderboard:2024-06-01"}, s.rec.calls)
}

func TestRunForDaySkipsLeaderboardWhenAggregationFails(t *testing.T) {
	s := newTestScheduler(t, time.Now(), Config{})
	s.branch.err = errors.New("db down")

	err := s.RunForDay(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.Contains(t, err.Error(), JobAggregateBranches)
	assert.Equal(t, []string{"branch:2024-06-01"}, s.rec.calls)
}

func TestRunForDaySkipsLeaderboardWhenAggregationTimesOut(t *testing.T) {
	s := newTestScheduler(t, time.Now(), Config{})
	s.branch.err = context.DeadlineExceeded

	err := s.RunForDay(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), JobAggregateBranches)
	assert.Equal(t, []string{"branch:2024-06-01"}, s.rec.calls)
}

func TestRebuildReportsTimedOutAggregation(t *testing.T) {
	s := newTestScheduler(t, time.Now(), Config{})
	s.branch.err = context.DeadlineExceeded
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	err := s.Rebuild(context.Background(), day, day)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, s.rec.calls, "leaderboard:2024-06-01")
}

func TestRunForDaySkipsWhenLockHeld(t *testing.T) {
	s := newTestScheduler(t, time.Now(), Config{})
	s.locker = heldLocker{}

	require.NoError(t, s.RunForDay(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Empty(t, s.rec.calls)

	labels := map[string]string{
		"service": "streakscore",
		"env":     "test",
		"job":     JobDailyBatch,
		"reason":  obsmetrics.SchedulerBatchDeferredReasonLockHeld,
	}
	assert.Equal(t, float64(1), getCounterValue(t, s.registry, "streakscore_scheduler_batch_deferred_total", labels))
}

func TestRebuildReconcilesThenReplaysEachDay(t *testing.T) {
	s := newTestScheduler(t, time.Now(), Config{})
	d1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := calendar.AddDays(d1, 1)
	s.ledgerRepo = &stubLedgerRepo{keys: []ledgerdomain.UserDay{
		{UserID: "u1", Day: d1},
		{UserID: "bad", Day: d1},
		{UserID: "u1", Day: d2},
		{UserID: "u1", Day: calendar.AddDays(d1, 5)},
	}}
	s.summarySvc = &stubSummarySvc{rec: s.rec, fail: "bad"}

	err := s.Rebuild(context.Background(), d1, d2)

	require.Error(t, err)
	assert.Equal(t, []string{
		"summary:u1:2024-06-01",
		"summary:bad:2024-06-01",
		"summary:u1:2024-06-02",
		"branch:2024-06-01",
		"leaderboard:2024-06-01",
		"branch:2024-06-02",
		"leaderboard:2024-06-02",
	}, s.rec.calls)
}

func TestRebuildRejectsInvertedRange(t *testing.T) {
	s := newTestScheduler(t, time.Now(), Config{})
	d := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, s.Rebuild(context.Background(), d, calendar.Previous(d)), ErrInvalidRange)
}

func TestConfigDefaultsAndValidation(t *testing.T) {
	cfg := Config{Timeout: 20 * time.Minute}.withDefaults()
	assert.Equal(t, "15 0 * * *", cfg.Schedule)
	assert.Equal(t, 40*time.Minute, cfg.LockTTL)

	cfg = Config{Timeout: 5 * time.Minute, LockTTL: time.Hour}.withDefaults()
	assert.Equal(t, time.Hour, cfg.LockTTL)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.NoError(t, cfg.validate())

	cfg.Schedule = "every day"
	assert.ErrorIs(t, cfg.validate(), ErrInvalidSchedule)
}

func swapPrometheusRegistry(registry *prometheus.Registry) func() {
	oldRegisterer := prometheus.DefaultRegisterer
	oldGatherer := prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
	obsmetrics.ResetSchedulerMetricsForTest()
	return func() {
		prometheus.DefaultRegisterer = oldRegisterer
		prometheus.DefaultGatherer = oldGatherer
		obsmetrics.ResetSchedulerMetricsForTest()
	}
}

func getCounterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metricFamilies {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if !labelsMatch(metric, labels) {
				continue
			}
			if metric.Counter == nil {
				t.Fatalf("metric %s is not a counter", name)
			}
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.Label) != len(labels) {
		return false
	}
	for _, label := range metric.Label {
		if labels[label.GetName()] != label.GetValue() {
			return false
		}
	}
	return true
}
