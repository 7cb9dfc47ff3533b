package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels attached to every collector.
type Config struct {
	ServiceName string
	Environment string
}

const (
	ProjectionSummary     = "daily_summary"
	ProjectionScore       = "daily_score"
	ProjectionBranch      = "branch_scores"
	ProjectionLeaderboard = "leaderboard"
)

// ScoringMetrics tracks score creation and projection rebuilds.
type ScoringMetrics struct {
	scoresCreated      *prometheus.CounterVec
	duplicatesResolved prometheus.Counter
	projectionFailures *prometheus.CounterVec
	projectionDuration *prometheus.HistogramVec
	milestonesReached  *prometheus.CounterVec
}

var (
	scoringMetricsOnce sync.Once
	scoringMetrics     *ScoringMetrics
)

// Scoring returns the singleton scoring metrics registry.
func Scoring() *ScoringMetrics {
	return ScoringWithConfig(Config{})
}

func ScoringWithConfig(cfg Config) *ScoringMetrics {
	scoringMetricsOnce.Do(func() {
		scoringMetrics = newScoringMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return scoringMetrics
}

// ResetScoringMetricsForTest resets the scoring metrics singleton for tests.
func ResetScoringMetricsForTest() {
	scoringMetricsOnce = sync.Once{}
	scoringMetrics = nil
}

func constLabels(cfg Config) prometheus.Labels {
	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "streakscore"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

func newScoringMetrics(registerer prometheus.Registerer, cfg Config) *ScoringMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	scoresCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "streakscore_daily_scores_created_total",
		Help:        "Daily scores persisted by record type.",
		ConstLabels: labels,
	}, []string{"record_type"})
	duplicatesResolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "streakscore_daily_score_duplicates_total",
		Help:        "Concurrent score inserts resolved by re-reading the winning row.",
		ConstLabels: labels,
	})
	projectionFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "streakscore_projection_failures_total",
		Help:        "Projection recomputations that returned an error.",
		ConstLabels: labels,
	}, []string{"projection"})
	projectionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "streakscore_projection_duration_seconds",
		Help:        "Time spent recomputing a projection.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: labels,
	}, []string{"projection"})
	milestonesReached := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "streakscore_milestones_reached_total",
		Help:        "Milestone bonuses awarded by streak length.",
		ConstLabels: labels,
	}, []string{"streak_days"})

	registerer.MustRegister(
		scoresCreated,
		duplicatesResolved,
		projectionFailures,
		projectionDuration,
		milestonesReached,
	)

	return &ScoringMetrics{
		scoresCreated:      scoresCreated,
		duplicatesResolved: duplicatesResolved,
		projectionFailures: projectionFailures,
		projectionDuration: projectionDuration,
		milestonesReached:  milestonesReached,
	}
}

func (m *ScoringMetrics) IncScoreCreated(recordType string) {
	if m == nil {
		return
	}
	m.scoresCreated.WithLabelValues(recordType).Inc()
}

func (m *ScoringMetrics) IncDuplicateResolved() {
	if m == nil {
		return
	}
	m.duplicatesResolved.Inc()
}

func (m *ScoringMetrics) IncProjectionFailure(projection string) {
	if m == nil {
		return
	}
	m.projectionFailures.WithLabelValues(projection).Inc()
}

func (m *ScoringMetrics) ObserveProjection(projection string, duration time.Duration) {
	if m == nil {
		return
	}
	m.projectionDuration.WithLabelValues(projection).Observe(duration.Seconds())
}

func (m *ScoringMetrics) IncMilestoneReached(streakDays string) {
	if m == nil {
		return
	}
	m.milestonesReached.WithLabelValues(streakDays).Inc()
}
