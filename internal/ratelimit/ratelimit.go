package ratelimit

import "context"

// Store decides whether a submission identified by key is within its quota.
// Keys are namespaced by the caller, e.g. "ip:203.0.113.9" or
// "email:jane@example.com". Implementations never return an error: the
// contact pipeline treats rate limiting as pure bookkeeping and a store that
// cannot answer must decide locally whether to fail open or closed.
type Store interface {
	Allow(ctx context.Context, key string) bool
}
