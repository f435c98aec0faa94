// Package scheduler runs the controller as a long-lived daemon.
//
// A cron expression drives repeated decision cycles, an optional HTTP
// endpoint exposes Prometheus metrics and a health check, and old audit
// records are pruned on a daily schedule. A failed cycle is logged and
// counted but never stops the daemon; the next tick starts from the last
// persisted controller state.
package scheduler
