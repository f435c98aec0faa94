// Package rollout retrieves the baseline routing percentage from its
// external source of truth: a YAML experiments block embedded in a GitHub
// issue comment.
//
// The comment is a loosely structured, human-edited document, so parsing is
// isolated behind the Source interface, which returns exactly one validated
// float in [0, 100]. Format drift upstream surfaces as a fetch failure here
// instead of leaking untyped data into the control loop.
package rollout
