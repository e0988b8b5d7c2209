package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sizingDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotsizer_decisions_total",
			Help: "Sizing decisions by outcome",
		},
		[]string{"strategy", "symbol", "outcome"},
	)

	tradeSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lotsizer_trade_size_lots",
			Help:    "Distribution of returned trade sizes in lots",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		},
		[]string{"strategy", "symbol"},
	)

	lossStreak = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lotsizer_loss_streak",
			Help: "Consecutive losses seen at the last sizing decision",
		},
		[]string{"strategy", "symbol"},
	)

	configErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotsizer_config_errors_total",
			Help: "Sizing calls rejected for misconfiguration",
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(sizingDecisions)
	prometheus.MustRegister(tradeSize)
	prometheus.MustRegister(lossStreak)
	prometheus.MustRegister(configErrors)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDecision records one completed sizing decision.
func RecordDecision(strategy, symbol, outcome string, lots float64, losses int) {
	sizingDecisions.WithLabelValues(strategy, symbol, outcome).Inc()
	tradeSize.WithLabelValues(strategy, symbol).Observe(lots)
	lossStreak.WithLabelValues(strategy, symbol).Set(float64(losses))
}

func RecordConfigError(strategy string) {
	configErrors.WithLabelValues(strategy).Inc()
}
