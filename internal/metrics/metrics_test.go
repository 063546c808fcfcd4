package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr/testr"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usersearch/internal/domain"
	"usersearch/internal/eventbus"
)

func newTestMetrics(t *testing.T) (*LookupMetrics, *time.Time) {
	t.Helper()
	m := NewLookupMetrics(prometheus.NewRegistry())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestObserveOutcomes(t *testing.T) {
	// given
	m, clock := newTestMetrics(t)

	// when
	m.Observe(eventbus.LookupStartedEvent{Seq: 1, Username: "octocat"})
	*clock = clock.Add(300 * time.Millisecond)
	m.Observe(eventbus.LookupSucceededEvent{Seq: 1, Record: domain.UserRecord{Login: "octocat"}})

	m.Observe(eventbus.LookupStartedEvent{Seq: 2, Username: "ghost"})
	m.Observe(eventbus.LookupNotFoundEvent{Seq: 2, Username: "ghost"})

	m.Observe(eventbus.LookupStartedEvent{Seq: 3, Username: "octocat"})
	*clock = clock.Add(7 * time.Second)
	m.Observe(eventbus.LookupFailedEvent{Seq: 3, Username: "octocat", Err: errors.New("boom")})

	m.Observe(eventbus.QueryRejectedEvent{Query: "  ", Reason: domain.ErrEmptyQuery})

	// then
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupsCounterVec.WithLabelValues(OutcomeFound)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupsCounterVec.WithLabelValues(OutcomeNotFound)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupsCounterVec.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupsCounterVec.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 3, promtestutil.CollectAndCount(m.LookupHistogramVec, "usersearch_lookup_duration_seconds"))
	assert.Empty(t, m.started)
}

func TestObserveDuration(t *testing.T) {
	m, clock := newTestMetrics(t)

	m.Observe(eventbus.LookupStartedEvent{Seq: 1, Username: "octocat"})
	*clock = clock.Add(2 * time.Second)
	m.Observe(eventbus.LookupSucceededEvent{Seq: 1})

	expected := `
		# HELP usersearch_lookup_duration_seconds time from submit until the lookup settled
		# TYPE usersearch_lookup_duration_seconds histogram
		usersearch_lookup_duration_seconds_bucket{outcome="found",le="0.05"} 0
		usersearch_lookup_duration_seconds_bucket{outcome="found",le="0.1"} 0
		usersearch_lookup_duration_seconds_bucket{outcome="found",le="0.25"} 0
		usersearch_lookup_duration_seconds_bucket{outcome="found",le="0.5"} 0
		usersearch_lookup_duration_seconds_bucket{outcome="found",le="1"} 0
		usersearch_lookup_duration_seconds_bucket{outcome="found",le="5"} 1
		usersearch_lookup_duration_seconds_bucket{outcome="found",le="10"} 1
		usersearch_lookup_duration_seconds_bucket{outcome="found",le="+Inf"} 1
		usersearch_lookup_duration_seconds_sum{outcome="found"} 2
		usersearch_lookup_duration_seconds_count{outcome="found"} 1
`
	err := promtestutil.CollectAndCompare(m.LookupHistogramVec, strings.NewReader(expected), "usersearch_lookup_duration_seconds")
	require.NoError(t, err)
}

func TestObserveDiscardedDropsStartTime(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.Observe(eventbus.LookupStartedEvent{Seq: 4, Username: "torvalds"})
	m.Observe(eventbus.LookupDiscardedEvent{Seq: 4, Current: 0, Username: "torvalds"})

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupsCounterVec.WithLabelValues(OutcomeDiscarded)))
	assert.Equal(t, 0, promtestutil.CollectAndCount(m.LookupHistogramVec))
	assert.Empty(t, m.started)
}

func TestObserveResetForgetsPendingLookup(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.Observe(eventbus.LookupStartedEvent{Seq: 5, Username: "octocat"})
	m.Observe(eventbus.SearchResetEvent{})

	assert.Empty(t, m.started)
	assert.Equal(t, 0, promtestutil.CollectAndCount(m.LookupsCounterVec))
}

func TestAttach(t *testing.T) {
	m, _ := newTestMetrics(t)
	bus := eventbus.New(testr.New(t))
	defer bus.Close()

	detach := m.Attach(bus)
	bus.Publish(eventbus.LookupStartedEvent{Seq: 1, Username: "octocat"})
	bus.Publish(eventbus.LookupNotFoundEvent{Seq: 1, Username: "octocat"})
	bus.Publish(eventbus.LookupStartedEvent{Seq: 2, Username: "ghost"})
	bus.Publish(eventbus.SearchResetEvent{})

	require.Eventually(t, func() bool {
		return promtestutil.ToFloat64(m.LookupsCounterVec.WithLabelValues(OutcomeNotFound)) == 1
	}, time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.started) == 0
	}, time.Second, 10*time.Millisecond)

	detach()
	bus.Publish(eventbus.LookupNotFoundEvent{Seq: 2, Username: "ghost"})
	bus.Publish(eventbus.QueryRejectedEvent{})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.LookupsCounterVec.WithLabelValues(OutcomeNotFound)))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(m.LookupsCounterVec.WithLabelValues(OutcomeRejected)))
}

func TestHandler(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.Observe(eventbus.QueryRejectedEvent{})

	rec := httptest.NewRecorder()
	Handler(m.Reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `usersearch_lookups_total{outcome="rejected"} 1`)

	rec = httptest.NewRecorder()
	Handler(m.Reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/other", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
