// Package checks contains the built-in vulnerability check plugins. Each
// check is self-contained: it consumes the shared scan context and returns
// findings, and any internal request fan-out is its own concern.
package checks

import "github.com/PentesterFlow/LocalScan/internal/check"

// Default returns the built-in checks in their fixed execution order.
// Cheap, read-only checks run first; probes that mutate state or fan out
// many requests come last.
func Default() []check.Check {
	return []check.Check{
		NewSecurityHeaders(),
		NewCORS(),
		NewExposure(),
		NewForms(),
		NewWebSocketAuth(),
		NewRace(),
	}
}
