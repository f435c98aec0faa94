// Package spend queries the cloud cost analytics provider for month-to-date
// spend and recent daily spend rate on the secondary account.
//
// The provider exposes a single billing query endpoint; both operations are
// windows over the same "credits" measure. The daily rate is always computed
// from completed local calendar days, never the partial current day, so the
// rate is not biased low by however little of today has elapsed.
//
// Any non-2xx response, malformed payload, or non-finite credit value is a
// fetch failure; the control loop treats those as fatal for the cycle
// because acting on missing spend data risks an incorrect routing decision.
package spend
