// Package telemetry provides observability for the controller.
//
// # Components
//
//   - logging: structured slog output with size-based file rotation
//   - metrics: Prometheus metrics for decisions, spend, and cycle health
//
// # Usage
//
//	logger, closeLogs, err := logging.Setup(cfg)
//	defer closeLogs()
//
//	registry := prometheus.NewRegistry()
//	m := metrics.New("creditpilot", registry)
//	m.RecordDecision(decision)
package telemetry
