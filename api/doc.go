// Package api is the thin REST boundary of the platform backend: journeys,
// perspectives and the reconciliation call issued after a successful run.
// It is specified only at the boundary the streaming client touches; the
// backend itself is an external collaborator.
package api
