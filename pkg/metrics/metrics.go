package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "riskdesk"

// Recorder publishes refresh-cycle and HTTP metrics on its own registry
type Recorder struct {
	registry *prometheus.Registry

	refreshTotal    *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	alertsTotal     *prometheus.CounterVec
	riskScore       prometheus.Gauge
	dLeverage       prometheus.Gauge
	drawdown        prometheus.Gauge
	varMonthly      prometheus.Gauge
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New creates a Recorder with Go runtime and process collectors registered
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		refreshTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_total",
			Help:      "Refresh cycles by outcome",
		}, []string{"status"}),
		refreshDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a full analytics refresh",
			Buckets:   prometheus.DefBuckets,
		}),
		alertsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts raised by category",
		}, []string{"category"}),
		riskScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Latest composite risk score (0-100)",
		}),
		dLeverage: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "d_leverage",
			Help:      "Latest D-Leverage",
		}),
		drawdown: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_drawdown_pct",
			Help:      "Latest drawdown from running peak, percent",
		}),
		varMonthly: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "var_monthly_pct",
			Help:      "Latest monthly VaR estimate, percent",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Snapshot is the subset of a refresh result exported as gauges
type Snapshot struct {
	RiskScore       float64
	DLeverage       float64
	CurrentDrawdown float64
	VaRMonthly      float64
}

// ObserveRefresh records one refresh cycle
func (r *Recorder) ObserveRefresh(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.refreshTotal.WithLabelValues(status).Inc()
	r.refreshDuration.Observe(d.Seconds())
}

// SetSnapshot updates the risk gauges
func (r *Recorder) SetSnapshot(s Snapshot) {
	r.riskScore.Set(s.RiskScore)
	r.dLeverage.Set(s.DLeverage)
	r.drawdown.Set(s.CurrentDrawdown)
	r.varMonthly.Set(s.VaRMonthly)
}

// AddAlerts counts raised alerts
func (r *Recorder) AddAlerts(category string, n int) {
	if n > 0 {
		r.alertsTotal.WithLabelValues(category).Add(float64(n))
	}
}

// ObserveHTTP records one served request
func (r *Recorder) ObserveHTTP(method, route, status string, d time.Duration) {
	r.httpRequests.WithLabelValues(method, route, status).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler exposes the registry in the Prometheus text format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
