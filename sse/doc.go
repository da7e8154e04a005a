// Package sse implements the event-stream transport: a cancellable,
// long-lived HTTP connection whose response body is decoded into discrete
// {event, data} frames and delivered to a consumer callback in arrival order.
//
// The wire format is line oriented: repeated blocks of
//
//	event: <name>
//	data: <payload>
//	<blank line>
//
// The transport carries no retry or backoff logic; reconnection is a caller
// policy. Abort is distinguishable from a genuine network error: after
// Handle.Abort no further callbacks fire for that stream.
package sse
