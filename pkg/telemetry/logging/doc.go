// Package logging configures the process-wide structured logger.
//
// Output goes to the console and, when a log file is configured, to a
// size-rotated file as well. Both sinks receive the same structured
// records; the cycle summary in particular must land in the file, since
// the console output of a cron-driven run is rarely kept.
package logging
