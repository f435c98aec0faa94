// Package cli provides shared helpers for the creditpilot command line:
// typed errors, signal-aware contexts, and the rollout artifact writer
// consumed by downstream automation.
package cli
