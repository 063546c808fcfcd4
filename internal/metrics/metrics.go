package metrics

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"usersearch/internal/eventbus"
)

// Lookup outcome label values
const (
	OutcomeFound     = "found"
	OutcomeNotFound  = "not_found"
	OutcomeFailed    = "failed"
	OutcomeDiscarded = "discarded"
	OutcomeRejected  = "rejected"
)

const metricsPrefix = "usersearch_"

type LookupMetrics struct {
	// LookupsCounterVec counts settled, discarded and rejected lookups by outcome
	LookupsCounterVec *prometheus.CounterVec
	// LookupHistogramVec measures the time from submit to settle
	LookupHistogramVec *prometheus.HistogramVec
	Reg                *prometheus.Registry

	mu sync.Mutex
	// submit times of unsettled lookups; emptied on settle, discard and reset
	started map[uint64]time.Time
	now     func() time.Time
}

func NewLookupMetrics(reg *prometheus.Registry) *LookupMetrics {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricsPrefix + "lookups_total",
		Help: "number of user lookups by outcome",
	}, []string{"outcome"})
	duration := newHistogramVec("lookup_duration_seconds", "time from submit until the lookup settled", "outcome")
	reg.MustRegister(lookups)
	reg.MustRegister(duration)
	return &LookupMetrics{
		LookupsCounterVec:  lookups,
		LookupHistogramVec: duration,
		Reg:                reg,
		started:            make(map[uint64]time.Time),
		now:                time.Now,
	}
}

func newHistogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricsPrefix + name,
		Help:    help,
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 5, 10},
	}, labels)
}

// Attach subscribes to the lookup lifecycle events of bus. The returned
// function removes the subscriptions.
func (m *LookupMetrics) Attach(bus eventbus.EventBus) func() {
	types := []eventbus.EventType{
		eventbus.EventQueryRejected,
		eventbus.EventLookupStarted,
		eventbus.EventLookupSucceeded,
		eventbus.EventLookupNotFound,
		eventbus.EventLookupFailed,
		eventbus.EventLookupDiscarded,
		eventbus.EventSearchReset,
	}
	unsubs := make([]func(), 0, len(types))
	for _, t := range types {
		unsubs = append(unsubs, bus.Subscribe(t, m.Observe))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

// Observe records a single event
func (m *LookupMetrics) Observe(e eventbus.DomainEvent) {
	switch ev := e.(type) {
	case eventbus.QueryRejectedEvent:
		m.LookupsCounterVec.WithLabelValues(OutcomeRejected).Inc()
	case eventbus.LookupStartedEvent:
		m.mu.Lock()
		m.started[ev.Seq] = m.now()
		m.mu.Unlock()
	case eventbus.LookupSucceededEvent:
		m.settle(ev.Seq, OutcomeFound)
	case eventbus.LookupNotFoundEvent:
		m.settle(ev.Seq, OutcomeNotFound)
	case eventbus.LookupFailedEvent:
		m.settle(ev.Seq, OutcomeFailed)
	case eventbus.LookupDiscardedEvent:
		m.mu.Lock()
		delete(m.started, ev.Seq)
		m.mu.Unlock()
		m.LookupsCounterVec.WithLabelValues(OutcomeDiscarded).Inc()
	case eventbus.SearchResetEvent:
		// a lookup pending at reset is stale and may never report back
		m.mu.Lock()
		clear(m.started)
		m.mu.Unlock()
	}
}

func (m *LookupMetrics) settle(seq uint64, outcome string) {
	m.LookupsCounterVec.WithLabelValues(outcome).Inc()

	m.mu.Lock()
	start, ok := m.started[seq]
	delete(m.started, seq)
	m.mu.Unlock()
	if ok {
		m.LookupHistogramVec.WithLabelValues(outcome).Observe(m.now().Sub(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func Handler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{DisableCompression: true, Registry: reg}))
	return mux
}

// StartServer serves /metrics on addr until the returned server is shut down
func StartServer(reg *prometheus.Registry, addr string, log logr.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("starting the metrics server", "addr", addr)
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, "metrics server stopped")
		}
	}()
	return srv
}
