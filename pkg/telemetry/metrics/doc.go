// Package metrics exposes the controller's Prometheus metrics.
//
// In daemon mode the metrics are served over HTTP alongside the cron
// schedule; in one-shot mode they are still recorded so a push gateway or
// a wrapping process can scrape the registry if it wants to.
package metrics
