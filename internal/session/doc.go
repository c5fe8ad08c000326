// Package session implements the single-admin session coordinator.
//
// The panel has exactly one administrative credential and at most one
// live session. Sessions are opaque random tokens: the raw token lives
// only in the client's cookie, the store holds its SHA-256 hash, and
// the reserved value "000" marks logged-out. A caller's state is
// computed fresh on every request from the stored credential and the
// presented token; nothing is cached between requests.
//
// Login enforces two guards:
//
//   - a cooldown window: while a session is active, a second login is
//     rejected until the admin has been idle for the window, so an
//     active admin cannot be silently displaced
//   - a compare-and-swap token swap: two valid logins racing within the
//     same instant resolve in the store, and exactly one wins
//
// An authenticated session never expires from idleness alone; only the
// next login attempt is throttled. Idle expiry was considered and
// rejected to keep long-running panel sessions alive.
package session
