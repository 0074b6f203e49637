// Package metrics exports shutdown.State counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vinayprograms/wrapup/shutdown"
)

const namespace = "wrapup"

// Collector reads a State at scrape time, so nothing is added to the
// request path.
type Collector struct {
	state *shutdown.State

	requested       *prometheus.Desc
	epoch           *prometheus.Desc
	requests        *prometheus.Desc
	signalsCaught   *prometheus.Desc
	timersFired     *prometheus.Desc
	timersCancelled *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for state.
func NewCollector(state *shutdown.State) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "shutdown", name), help, nil, nil)
	}
	return &Collector{
		state:           state,
		requested:       desc("requested", "1 if shutdown is requested in the current epoch."),
		epoch:           desc("epoch", "Number of resets that started a new request cycle."),
		requests:        desc("requests_total", "Calls to Request, including repeats."),
		signalsCaught:   desc("signals_caught_total", "OS signals that requested shutdown."),
		timersFired:     desc("timers_fired_total", "Timers that requested shutdown."),
		timersCancelled: desc("timers_cancelled_total", "Timers cancelled before their deadline."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requested
	ch <- c.epoch
	ch <- c.requests
	ch <- c.signalsCaught
	ch <- c.timersFired
	ch <- c.timersCancelled
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.state.Stats()

	requested := 0.0
	if st.Requested {
		requested = 1
	}
	ch <- prometheus.MustNewConstMetric(c.requested, prometheus.GaugeValue, requested)
	ch <- prometheus.MustNewConstMetric(c.epoch, prometheus.CounterValue, float64(st.Epoch))
	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(st.Requests))
	ch <- prometheus.MustNewConstMetric(c.signalsCaught, prometheus.CounterValue, float64(st.SignalsCaught))
	ch <- prometheus.MustNewConstMetric(c.timersFired, prometheus.CounterValue, float64(st.TimersFired))
	ch <- prometheus.MustNewConstMetric(c.timersCancelled, prometheus.CounterValue, float64(st.TimersCancelled))
}

// Handler returns an HTTP handler serving a registry that holds only the
// collector for state.
func Handler(state *shutdown.State) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewCollector(state)); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}
