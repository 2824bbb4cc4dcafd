// Package telemetry holds the process-wide Prometheus metrics for the
// game actor runtime: games dealt and finished, actions applied and
// rejected, token-log failures, counter-window length, game duration.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/avidcoder/cutthroat/internal/engine"
	"github.com/avidcoder/cutthroat/internal/tokenlog"
)

var (
	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cutthroat_games_started_total",
		Help: "Total number of games dealt.",
	})

	GamesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutthroat_games_finished_total",
		Help: "Total number of games that reached GameOver, by winner kind.",
	}, []string{"winner_kind"})

	ActionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutthroat_actions_applied_total",
		Help: "Total number of actions successfully applied, by action kind.",
	}, []string{"action_kind"})

	ApplyRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutthroat_apply_rejections_total",
		Help: "Total number of actions rejected by Apply, by RuleError kind.",
	}, []string{"rule_error_kind"})

	TokenLogFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cutthroat_tokenlog_failures_total",
		Help: "Total number of token-log parse or replay failures, by TokenError kind.",
	}, []string{"token_error_kind"})

	CounterWindowLength = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cutthroat_counter_window_length",
		Help:    "Number of Twos played before a counter window closes.",
		Buckets: []float64{0, 1, 2, 3, 4, 6, 8},
	})

	GameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cutthroat_game_duration_seconds",
		Help:    "Wall-clock duration of a game from deal to GameOver.",
		Buckets: prometheus.DefBuckets,
	})

	LiveGames = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cutthroat_live_games",
		Help: "Number of games currently registered and accepting actions.",
	})
)

// RecordApply records the outcome of one Apply call. err is nil on
// success; on failure it is expected to be an *engine.RuleError, but any
// error is recorded under an "unknown" label rather than dropped.
func RecordApply(actionKind string, err error) {
	if err == nil {
		ActionsApplied.WithLabelValues(actionKind).Inc()
		return
	}
	ApplyRejections.WithLabelValues(ruleErrorKindLabel(err)).Inc()
}

// RecordGameFinished records a completed game's winner kind.
func RecordGameFinished(winnerKind string) {
	GamesFinished.WithLabelValues(winnerKind).Inc()
}

// RecordTokenLogFailure records a parse/replay failure by its TokenError
// kind, or "unknown" if err is not one.
func RecordTokenLogFailure(err error) {
	if te, ok := err.(*tokenlog.TokenError); ok {
		TokenLogFailures.WithLabelValues(te.Kind.String()).Inc()
		return
	}
	TokenLogFailures.WithLabelValues("unknown").Inc()
}

func ruleErrorKindLabel(err error) string {
	if re, ok := err.(*engine.RuleError); ok {
		return re.Kind.String()
	}
	return "unknown"
}
