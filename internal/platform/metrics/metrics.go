// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics collects and exposes Prometheus metrics for the API.
//
// # Series
//
//   - storefront_http_requests_total{method,route,status}
//   - storefront_http_request_duration_seconds{method,route}
//   - storefront_auth_flow_total{flow,outcome}
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth flow outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

// Collector holds the registered Prometheus series.
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	authFlows    *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its series on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests served, by route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		authFlows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_auth_flow_total",
			Help: "Authentication flow completions, by flow and outcome.",
		}, []string{"flow", "outcome"}),
	}

	reg.MustRegister(c.httpRequests, c.httpDuration, c.authFlows)

	return c
}

// RecordHTTPRequest records one finished request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAuthFlow records the outcome of one auth flow invocation.
func (c *Collector) RecordAuthFlow(flow, outcome string) {
	c.authFlows.WithLabelValues(flow, outcome).Inc()
}

// Handler returns the HTTP handler serving the scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
