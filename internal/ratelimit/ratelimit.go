// Package ratelimit provides per-caller request throttling for the MCP
// transport. The only implementation is an in-memory token bucket; there is
// no shared backing store because the service runs as a single process.
package ratelimit

import "context"

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	// Allow reports whether a request for key should proceed.
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// NoopLimiter never rejects a request. Useful as the zero-value default in
// tests and in deployments that disable rate limiting entirely.
type NoopLimiter struct{}

func (NoopLimiter) Allow(_ context.Context, _ string) (bool, error) { return true, nil }
func (NoopLimiter) Close() error                                    { return nil }
