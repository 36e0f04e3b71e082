// Package session owns the client's authentication state: the current user
// and its credential pair, both in memory and in the durable keystore.
//
// # Invariants
//
// The user and the two tokens form an atomic triple. It is never valid to
// persist a user without both tokens, or tokens without a user; every write
// path goes through a single transaction and hydration fails safe to the
// unauthenticated state when any of the three keys is missing or corrupt.
//
// # Generations
//
// Every login and logout bumps a generation counter. Callers that resolve an
// asynchronous login capture the generation before starting the request and
// commit with LoginAt, so a logout that landed in between wins and a stale
// response cannot resurrect a cleared session.
//
// # Reactivity
//
// Consumers subscribe with Subscribe and receive a Snapshot after every
// committed mutation. The store knows nothing about the notification channel;
// binding it to authentication changes is the route guard's job.
package session
