package middleware

import (
	"net/http"
	"sync/atomic"
)

// Counters are the request totals reported by /metrics.
type Counters struct {
	Requests     atomic.Int64
	ClientErrors atomic.Int64
	ServerErrors atomic.Int64
	// AuthRejected counts 401 and 403 responses, which include expired
	// invite tokens as well as missing or stale bearer tokens.
	AuthRejected atomic.Int64
}

// Errors is the number of responses with a 4xx or 5xx status.
func (c *Counters) Errors() int64 {
	return c.ClientErrors.Load() + c.ServerErrors.Load()
}

func (c *Counters) Snapshot() map[string]int64 {
	return map[string]int64{
		"request_count":       c.Requests.Load(),
		"error_count":         c.Errors(),
		"client_error_count":  c.ClientErrors.Load(),
		"server_error_count":  c.ServerErrors.Load(),
		"auth_rejected_count": c.AuthRejected.Load(),
	}
}

// MetricsCollector records every response into a Counters.
type MetricsCollector struct {
	counters *Counters
}

func NewMetricsCollector(c *Counters) *MetricsCollector {
	return &MetricsCollector{counters: c}
}

func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.counters.Requests.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		switch code := rw.statusCode; {
		case code >= 500:
			mc.counters.ServerErrors.Add(1)
		case code >= 400:
			mc.counters.ClientErrors.Add(1)
			if code == http.StatusUnauthorized || code == http.StatusForbidden {
				mc.counters.AuthRejected.Add(1)
			}
		}
	})
}
