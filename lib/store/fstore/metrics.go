package fstore

import (
	"github.com/VictoriaMetrics/metrics"
)

// Operation counters and persist timings, aggregated over all file store
// instances in the process. Exposed in the Prometheus text format via
// metrics.WritePrometheus (see the perf command of the CLI).
var (
	getCalls        = metrics.NewCounter(`skv_store_ops_total{op="get"}`)
	getDefaultCalls = metrics.NewCounter(`skv_store_ops_total{op="getdefault"}`)
	hasCalls        = metrics.NewCounter(`skv_store_ops_total{op="has"}`)
	getAllCalls     = metrics.NewCounter(`skv_store_ops_total{op="getall"}`)
	infoCalls       = metrics.NewCounter(`skv_store_ops_total{op="info"}`)
	setCalls        = metrics.NewCounter(`skv_store_ops_total{op="set"}`)
	updateCalls     = metrics.NewCounter(`skv_store_ops_total{op="update"}`)
	deleteCalls     = metrics.NewCounter(`skv_store_ops_total{op="delete"}`)
	clearCalls      = metrics.NewCounter(`skv_store_ops_total{op="clear"}`)

	persistDuration = metrics.NewHistogram(`skv_store_persist_duration_seconds`)
	persistErrors   = metrics.NewCounter(`skv_store_persist_errors_total`)
)
