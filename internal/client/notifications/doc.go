// Package notifications owns the client's realtime push channel.
//
// A Manager binds at most one live websocket to the authenticated user id.
// Inbound events are appended to an ordered, append-only log in arrival
// order together with an unread counter. Transport failures drop the
// connection state synchronously and schedule bounded reconnect attempts
// with exponential backoff; an explicit Disconnect cancels every pending
// retry so a torn-down manager can never reconnect with stale credentials.
//
// Events delivered while the channel is down are not backfilled on
// reconnect; the platform defines no catch-up protocol.
package notifications
