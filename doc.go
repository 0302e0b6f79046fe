// Package gatekeep implements an admin-gated account lifecycle: users sign up,
// an administrator approves or rejects them, and only approved, non-expired
// accounts can sign in. The package owns the decision logic — signup
// validation, credential verification order, status gating, and review
// transitions — and delegates durable storage to an [AccountStore].
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// gatekeep is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Account, PublicView, LoginResult, etc.). Internal
// coordination — audit dispatch and the login throttle — lives under
// internal/ and is never exported. The pure leaf packages (password, session) are importable on
// their own and never import gatekeep; the integration packages (store,
// notify, metrics/export) import gatekeep only for its shared types and
// sentinel errors.
//
// # What this package must NOT do
//
//   - Serve HTTP, render UI, or set CORS headers; callers own the transport.
//   - Re-implement status or expiry rules outside the Engine; the UI only
//     renders outcomes.
//   - Retain per-request state between calls; every operation is a single
//     bounded request/response against the injected store.
//   - Let a plaintext password past the hashing boundary, in storage or logs.
package gatekeep
