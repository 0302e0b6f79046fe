// Package rate provides the Redis-backed login throttle used by the engine.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefixes:
//   - rl:login: — failed logins per email
//   - rl:ip:    — failed logins per client IP
//
// Only failed attempts count against the window; a successful login clears
// both counters. Infrastructure failures surface as [ErrRedisUnavailable]
// so the caller can decide whether to fail open.
//
// # What this package must NOT do
//
//   - Decide what happens on a Redis outage; the engine owns that policy.
//   - Be imported outside this module.
package rate
