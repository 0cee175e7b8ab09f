// Package oracle abstracts the external text-completion capability that
// performs the actual fuzzy alignment judgment. The pipeline depends
// only on the Oracle interface; how the oracle is physically reached
// (local model server, remote API, a driven browser session) is an
// adapter concern.
package oracle

import "context"

// Oracle is one stateful completion session. Submit blocks until the
// full response is captured; calls must not be issued concurrently.
type Oracle interface {
	// Submit sends the alignment request and returns the raw response
	// text. An empty response with a nil error means the oracle produced
	// nothing; callers log and skip rather than retry indefinitely.
	Submit(ctx context.Context, request string) (string, error)

	// IsReady reports whether the oracle endpoint is reachable. An
	// unreachable oracle at startup aborts the whole run.
	IsReady(ctx context.Context) bool
}
