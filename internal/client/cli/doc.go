// Package cli implements the interactive TournOps terminal client.
//
// The App wires the session store, the auth service, the notification
// channel manager and the route guard together and drives them from a
// read–eval–print loop. The guard reacts to session changes: signing in
// binds the push channel to the user, signing out (or an expired session)
// unbinds it and puts the prompt back at the sign-in route.
//
// Commands
//
//	Signed out:  register, login, forgot, status, help, exit
//	Signed in:   whoami, notifications, read, clear, status, passwd,
//	             verify, logout, help, exit
package cli
