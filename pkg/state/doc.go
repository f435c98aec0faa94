// Package state persists the PID controller state between invocations.
//
// The controller process runs one cycle and exits, so the integral
// accumulator, previous error and last-update timestamp must survive in
// durable storage. Backend is the persistence interface; three
// implementations are provided:
//
//   - FileBackend: a small JSON file with atomic replace-on-write. This is
//     the default and matches the single-host cron deployment.
//   - SQLiteBackend: a single-row SQLite table, for hosts where the state
//     should live alongside the decision history database tooling.
//   - MemoryBackend: in-process only, for tests and simulations.
//
// All backends share the same recovery contract: a missing record yields a
// fresh default state, and a corrupt record is reset to the default with a
// logged warning rather than surfaced as an error. Losing integral history
// is preferable to halting budget protection.
package state
