// Package notify delivers best-effort approver notifications for new
// pending signups.
//
// Implementations must be safe for concurrent use and must treat delivery
// as advisory: the engine logs and counts a failed notification but never
// fails the signup for it.
package notify
