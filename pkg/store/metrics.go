package store

import "github.com/prometheus/client_golang/prometheus"

var (
	recordLoads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kidoku_store_record_loads_total",
		Help: "Channel record loads (missing records count as empty loads).",
	})
	recordSaves = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kidoku_store_record_saves_total",
		Help: "Channel record saves.",
	})
	recordErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kidoku_store_record_errors_total",
		Help: "Channel record load/save failures.",
	})
)

func init() {
	prometheus.MustRegister(recordLoads)
	prometheus.MustRegister(recordSaves)
	prometheus.MustRegister(recordErrors)
}
