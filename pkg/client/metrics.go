package client

import (
	"io"
	"sort"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

type actionStats struct {
	calls    uint64
	failures uint64
	seconds  float64
}

// Metrics counts control endpoint calls per action.
type Metrics struct {
	mu       sync.Mutex
	byAction map[string]*actionStats
}

func NewMetrics() *Metrics {
	return &Metrics{byAction: make(map[string]*actionStats)}
}

func (m *Metrics) Observe(action string, d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.byAction[action]
	if st == nil {
		st = &actionStats{}
		m.byAction[action] = st
	}
	st.calls++
	st.seconds += d.Seconds()
	if err != nil {
		st.failures++
	}
}

// Calls returns how many times action has been sent.
func (m *Metrics) Calls(action string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st := m.byAction[action]; st != nil {
		return st.calls
	}
	return 0
}

func (m *Metrics) Families() []*dto.MetricFamily {
	m.mu.Lock()
	actions := make([]string, 0, len(m.byAction))
	for action := range m.byAction {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	stats := make([]actionStats, len(actions))
	for i, action := range actions {
		stats[i] = *m.byAction[action]
	}
	m.mu.Unlock()

	calls := counterFamily("reloadpanel_requests_total", "Control endpoint calls per action.")
	failures := counterFamily("reloadpanel_request_failures_total", "Failed control endpoint calls per action.")
	seconds := counterFamily("reloadpanel_request_seconds_total", "Cumulative time spent in control endpoint calls.")

	for i, action := range actions {
		calls.Metric = append(calls.Metric, counter(action, float64(stats[i].calls)))
		failures.Metric = append(failures.Metric, counter(action, float64(stats[i].failures)))
		seconds.Metric = append(seconds.Metric, counter(action, stats[i].seconds))
	}
	return []*dto.MetricFamily{calls, failures, seconds}
}

// WriteText renders the counters in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	for _, mf := range m.Families() {
		if len(mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func counterFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
}

func counter(action string, value float64) *dto.Metric {
	return &dto.Metric{
		Label: []*dto.LabelPair{{
			Name:  proto.String("action"),
			Value: proto.String(action),
		}},
		Counter: &dto.Counter{Value: proto.Float64(value)},
	}
}
