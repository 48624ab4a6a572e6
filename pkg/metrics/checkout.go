package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the checkout state machine.
type CheckoutMetrics struct {
	begun          prometheus.Counter
	adjusted       prometheus.Counter
	confirmed      prometheus.Counter
	rejected       *prometheus.CounterVec
	verifyDuration prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	begun := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_begun_total",
		Help: "Checkout intents created.",
	})
	adjusted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_adjusted_total",
		Help: "Checkout intents that required stock adjustment.",
	})
	confirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_confirmed_total",
		Help: "Checkout intents that produced a purchase.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejected_total",
		Help: "Checkout intents rejected, by reason.",
	}, []string{"reason"})
	verifyDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_verify_duration_seconds",
		Help:    "Duration of stock verification in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(begun, adjusted, confirmed, rejected, verifyDuration)
	return &CheckoutMetrics{
		begun:          begun,
		adjusted:       adjusted,
		confirmed:      confirmed,
		rejected:       rejected,
		verifyDuration: verifyDuration,
	}
}

// IncBegun counts a new checkout intent.
func (c *CheckoutMetrics) IncBegun() {
	if c == nil || c.begun == nil {
		return
	}
	c.begun.Inc()
}

// IncAdjusted counts an intent that landed in the adjusted state.
func (c *CheckoutMetrics) IncAdjusted() {
	if c == nil || c.adjusted == nil {
		return
	}
	c.adjusted.Inc()
}

// IncConfirmed counts a confirmed purchase.
func (c *CheckoutMetrics) IncConfirmed() {
	if c == nil || c.confirmed == nil {
		return
	}
	c.confirmed.Inc()
}

// IncRejected counts a rejection with its reason label.
func (c *CheckoutMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	c.rejected.WithLabelValues(reason).Inc()
}

// ObserveVerifyDuration records how long stock verification took.
func (c *CheckoutMetrics) ObserveVerifyDuration(duration time.Duration) {
	if c == nil || c.verifyDuration == nil {
		return
	}
	c.verifyDuration.Observe(duration.Seconds())
}
