// Package domain holds the routing decision engine: it maps the paths
// touched by a push, the pushed branch and the routing configuration to the
// ordered set of pipeline names to start.
//
// Everything here is pure and synchronous. No I/O, no shared state; the
// same inputs always produce the same result.
package domain
