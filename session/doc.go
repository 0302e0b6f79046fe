// Package session issues and validates the client-held session token returned
// on successful login.
//
// # Token model
//
// Sessions are not tracked server-side. A token is an HS256-signed JWT whose
// claims carry the account's public identity (email, status snapshot, expiry)
// plus the issuing engine's boot ID. Validation rejects tokens whose boot ID
// differs from the manager's current one, so every engine restart forces
// clients to re-authenticate.
//
// # What this package must NOT do
//
//   - Import gatekeep or hold an account store.
//   - Embed the credential hash or any profile field in a claim.
//   - Persist anything; the token the client holds is the whole session.
package session
