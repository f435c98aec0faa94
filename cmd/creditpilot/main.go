// Creditpilot steers what fraction of CI jobs run on the secondary cloud
// account so its monthly credit grant is consumed smoothly.
//
// Each cycle it compares month-to-date spend against a linear budget
// trajectory and nudges the externally configured rollout percentage with
// a PID controller. The decision is persisted, logged, and optionally
// written as a YAML artifact for the automation that applies it.
//
// Usage:
//
//	# Run one decision cycle
//	creditpilot run
//
//	# Run with custom configuration and a 7-day spend-rate window
//	creditpilot run --config /etc/creditpilot/config.yaml --days 7
//
//	# Compute a decision without persisting controller state
//	creditpilot run --dry-run
//
//	# Run as a daemon, one cycle per hour
//	creditpilot run --schedule "0 * * * *"
//
//	# Inspect recent decisions
//	creditpilot history --limit 10
//
//	# Inspect or reset the persisted controller state
//	creditpilot state show
//	creditpilot state reset
package main

func main() {
	Execute()
}
