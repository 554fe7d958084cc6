package coach

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts upstream attempts and fallback replies.
type Metrics struct {
	attempts  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// NewMetrics creates the coach collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reflectboard_coach_attempts_total",
				Help: "Upstream completion attempts by outcome",
			},
			[]string{"outcome"}, // success, rate_limited, error
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reflectboard_coach_fallbacks_total",
				Help: "Replies served from the local question set",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.attempts, m.fallbacks} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) attempt(outcome string) {
	if m != nil {
		m.attempts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) fallback(reason FallbackReason) {
	if m != nil {
		m.fallbacks.WithLabelValues(string(reason)).Inc()
	}
}
