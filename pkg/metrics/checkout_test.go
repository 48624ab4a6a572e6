package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestCheckoutMetricsCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncBegun()
	m.IncBegun()
	m.IncAdjusted()
	m.IncConfirmed()
	m.IncRejected("timeout")
	m.IncRejected("timeout")
	m.IncRejected("")
	m.ObserveVerifyDuration(120 * time.Millisecond)

	if got := counterValue(t, m.begun); got != 2 {
		t.Fatalf("begun = %v, want 2", got)
	}
	if got := counterValue(t, m.adjusted); got != 1 {
		t.Fatalf("adjusted = %v, want 1", got)
	}
	if got := counterValue(t, m.confirmed); got != 1 {
		t.Fatalf("confirmed = %v, want 1", got)
	}
	if got := counterValue(t, m.rejected.WithLabelValues("timeout")); got != 2 {
		t.Fatalf("rejected timeout = %v, want 2", got)
	}
	if got := counterValue(t, m.rejected.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("rejected unknown = %v, want 1", got)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	t.Parallel()

	var m *CheckoutMetrics
	m.IncBegun()
	m.IncAdjusted()
	m.IncConfirmed()
	m.IncRejected("whatever")
	m.ObserveVerifyDuration(time.Second)

	unregistered := NewCheckoutMetrics(nil)
	unregistered.IncBegun()
	unregistered.IncRejected("timeout")
}
