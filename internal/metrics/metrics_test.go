package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"

	"github.com/leengari/stripetable/internal/engine"
	"github.com/leengari/stripetable/internal/query/indexing"
	"github.com/leengari/stripetable/internal/query/operations/selection"
	fixtures "github.com/leengari/stripetable/internal/query/operations/testutil"
	"github.com/leengari/stripetable/internal/storage/marshal"
)

func TestObserver_SelectEvents(t *testing.T) {
	o := NewObserver(prometheus.NewRegistry())

	o.OnEvent(engine.Event{Type: engine.EventSelectStart, Data: engine.SelectInfo{Table: "users"}})
	o.OnEvent(engine.Event{Type: engine.EventSelectEnd, Data: engine.SelectInfo{
		Table:    "users",
		Stats:    selection.Stats{RowsMatched: 3, IndexUsed: true, IndexCandidates: 4},
		Duration: 2 * time.Millisecond,
	}})
	o.OnEvent(engine.Event{Type: engine.EventSelectEnd, Data: engine.SelectInfo{
		Table: "users",
		Err:   errors.New("boom"),
	}})

	assert.Equal(t, testutil.ToFloat64(o.selectTotal.WithLabelValues("ok")), 1.0)
	assert.Equal(t, testutil.ToFloat64(o.selectTotal.WithLabelValues("error")), 1.0)
	assert.Equal(t, testutil.CollectAndCount(o.selectDuration), 1)
}

func TestObserver_MarshalAndIndexEvents(t *testing.T) {
	o := NewObserver(prometheus.NewRegistry())

	o.OnEvent(engine.Event{Type: engine.EventMarshalEnd, Data: engine.MarshalInfo{Format: "csv", Rows: 3}})
	o.OnEvent(engine.Event{Type: engine.EventUnmarshalEnd, Data: engine.MarshalInfo{Format: "csv", Rows: 2}})
	o.OnEvent(engine.Event{Type: engine.EventUnmarshalEnd, Data: engine.MarshalInfo{Format: "xml", Err: errors.New("bad")}})
	o.OnEvent(engine.Event{Type: engine.EventIndexBuilt, Data: engine.IndexInfo{Kind: "sorted", Valid: true}})
	o.OnEvent(engine.Event{Type: engine.EventIndexBuilt, Data: engine.IndexInfo{Kind: "fullscan", Valid: false}})
	o.OnEvent(engine.Event{Type: engine.EventCopyEnd, Data: engine.CopyInfo{Rows: 5}})

	assert.Equal(t, testutil.ToFloat64(o.marshalTotal.WithLabelValues("csv", "marshal", "ok")), 1.0)
	assert.Equal(t, testutil.ToFloat64(o.marshalTotal.WithLabelValues("csv", "unmarshal", "ok")), 1.0)
	assert.Equal(t, testutil.ToFloat64(o.marshalTotal.WithLabelValues("xml", "unmarshal", "error")), 1.0)
	assert.Equal(t, testutil.ToFloat64(o.marshalRows.WithLabelValues("csv", "marshal")), 3.0)
	assert.Equal(t, testutil.ToFloat64(o.indexBuilds.WithLabelValues("sorted", "true")), 1.0)
	assert.Equal(t, testutil.ToFloat64(o.indexBuilds.WithLabelValues("fullscan", "false")), 1.0)
	assert.Equal(t, testutil.ToFloat64(o.copyRows), 5.0)
}

func TestObserver_IgnoresForeignPayloads(t *testing.T) {
	o := NewObserver(prometheus.NewRegistry())
	o.OnEvent(engine.Event{Type: engine.EventSelectEnd, Data: "not select info"})
	assert.Equal(t, testutil.CollectAndCount(o.selectTotal), 0)
}

func TestObserver_WiredIntoEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := engine.New(engine.WithObserver(NewObserver(reg)))

	users := fixtures.CreateUsersTable()
	_, err := e.Execute(e.Select(users))
	assert.NilError(t, err)

	var buf bytes.Buffer
	assert.NilError(t, e.Marshal(users, marshal.CSV, &buf, marshal.DefaultOptions()))

	_, err = e.BuildIndex(users, 0, indexing.KindSorted)
	assert.NilError(t, err)

	expected := `
# HELP stripetable_select_total Select queries executed, by result
# TYPE stripetable_select_total counter
stripetable_select_total{result="ok"} 1
`
	assert.NilError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "stripetable_select_total"))

	count, err := testutil.GatherAndCount(reg, "stripetable_marshal_total", "stripetable_index_builds_total")
	assert.NilError(t, err)
	assert.Equal(t, count, 2)
}
