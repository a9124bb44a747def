package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	SPFRuns        = metric.NewCounter("10s1s")
	SPFDuration    = metric.NewHistogram("1m1s")
	RoutesComputed = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("spindle:SPFRuns/s", SPFRuns)
	expvar.Publish("spindle:RoutesComputed/s", RoutesComputed)
	expvar.Publish("spindle:SPFDuration (µs)", SPFDuration)
}
