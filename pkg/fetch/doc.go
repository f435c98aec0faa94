// Package fetch provides the HTTP core shared by the spend-data and
// baseline-percentage gateways.
//
// Both external sources are queried at most once per control cycle, but a
// transient failure must not skip a safety check, so every request gets a
// bounded retry with exponential backoff. Authentication failures and bad
// requests are never retried; only network errors and 5xx responses are.
//
// Errors are typed (AuthError, APIError, ParseError, TimeoutError) and all
// satisfy errors.As against *Error, the fetch-failure category the control
// loop treats as fatal for the cycle.
package fetch
