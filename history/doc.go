// Package history retains records of finished boomerang runs so a client can
// show what happened after the live panel is dismissed.
package history
