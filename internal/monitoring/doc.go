/*
Package monitoring exposes Prometheus metrics for the interpreter host:
HTTP request counters and latencies, live/created/destroyed context
gauges, and per-run duration and shared-namespace-size histograms.

Metrics are registered with promauto on the default registry and served
from the /metrics endpoint.
*/
package monitoring
