// Package http serves the client's local status endpoint while "notes watch"
// runs: health (connectivity and queue depth), build version and Prometheus
// metrics. Every request goes through trace-ID and access-log middleware.
package http
