// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing stream frames and scripting fake run streams.
// These helpers are intentionally minimal and are not intended for production
// usage.
package testutil
