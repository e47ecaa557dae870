package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leengari/stripetable/internal/engine"
)

const namespace = "stripetable"

// Observer turns engine events into Prometheus metrics
type Observer struct {
	selectTotal    *prometheus.CounterVec
	selectDuration prometheus.Histogram
	rowsMatched    prometheus.Histogram
	indexCands     prometheus.Histogram
	marshalTotal   *prometheus.CounterVec
	marshalRows    *prometheus.CounterVec
	indexBuilds    *prometheus.CounterVec
	copyRows       prometheus.Counter
}

var _ engine.Observer = (*Observer)(nil)

// NewObserver registers the collectors with reg. A nil reg means the default
// registry.
func NewObserver(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Observer{
		// Labels: result (ok, error)
		selectTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "select_total",
			Help:      "Select queries executed, by result",
		}, []string{"result"}),
		selectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "select_duration_seconds",
			Help:      "Select query latency in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		rowsMatched: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "select_rows_matched",
			Help:      "Result rows per select query",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		indexCands: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "select_index_candidates",
			Help:      "Candidate rows returned by an index, for queries that used one",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		// Labels: format, op (marshal, unmarshal), result (ok, error)
		marshalTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "marshal_total",
			Help:      "Marshal and unmarshal operations, by format and result",
		}, []string{"format", "op", "result"}),
		marshalRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "marshal_rows_total",
			Help:      "Rows written or read by successful marshal operations",
		}, []string{"format", "op"}),
		// Labels: kind, valid (true, false)
		indexBuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_builds_total",
			Help:      "Index builds, by kind and whether the scan completed",
		}, []string{"kind", "valid"}),
		copyRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "copy_rows_total",
			Help:      "Rows copied into tables from data sources",
		}),
	}
}

// OnEvent only looks at end events; start events carry no measurements
func (o *Observer) OnEvent(event engine.Event) {
	switch event.Type {
	case engine.EventSelectEnd:
		info, ok := event.Data.(engine.SelectInfo)
		if !ok {
			return
		}
		o.selectTotal.WithLabelValues(result(info.Err)).Inc()
		o.selectDuration.Observe(info.Duration.Seconds())
		if info.Err == nil {
			o.rowsMatched.Observe(float64(info.Stats.RowsMatched))
			if info.Stats.IndexUsed {
				o.indexCands.Observe(float64(info.Stats.IndexCandidates))
			}
		}

	case engine.EventMarshalEnd, engine.EventUnmarshalEnd:
		info, ok := event.Data.(engine.MarshalInfo)
		if !ok {
			return
		}
		op := "marshal"
		if event.Type == engine.EventUnmarshalEnd {
			op = "unmarshal"
		}
		o.marshalTotal.WithLabelValues(info.Format, op, result(info.Err)).Inc()
		if info.Err == nil {
			o.marshalRows.WithLabelValues(info.Format, op).Add(float64(info.Rows))
		}

	case engine.EventIndexBuilt:
		info, ok := event.Data.(engine.IndexInfo)
		if !ok {
			return
		}
		o.indexBuilds.WithLabelValues(info.Kind, strconv.FormatBool(info.Valid)).Inc()

	case engine.EventCopyEnd:
		if info, ok := event.Data.(engine.CopyInfo); ok && info.Err == nil {
			o.copyRows.Add(float64(info.Rows))
		}
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
