// Package guard gates protected views on session state and drives the
// notification channel lifecycle as a side effect of that state. It owns
// neither the session nor the channel; it only reacts to snapshots.
package guard

import (
	"context"
	"sync"

	"github.com/matchline/tournops/internal/client/roles"
	"github.com/matchline/tournops/internal/client/session"
	"github.com/matchline/tournops/internal/logging"
)

// Decision is the guard's verdict for the current session snapshot.
type Decision int

const (
	// DecisionLoading: hydration has not finished; render a loading
	// affordance and make no authorization call yet.
	DecisionLoading Decision = iota
	// DecisionRedirectSignIn: the visitor is not authenticated; replace the
	// current history entry with the sign-in route.
	DecisionRedirectSignIn
	// DecisionRender: render the protected subtree.
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirectSignIn:
		return "redirect-sign-in"
	default:
		return "render"
	}
}

// Channel is the slice of the notification manager the guard drives.
type Channel interface {
	Connect(userID string) error
	Disconnect()
}

// Redirector performs a history-replacing navigation, so the back button
// cannot return to the guarded view.
type Redirector interface {
	Replace(route string)
}

const undecided Decision = -1

// Guard binds the protected subtree to the session store. One guard per
// protected surface; Mount attaches it, the returned teardown detaches it.
type Guard struct {
	channel Channel
	nav     Redirector
	log     logging.Logger

	mu   sync.Mutex
	last Decision
}

func New(channel Channel, nav Redirector, log logging.Logger) *Guard {
	return &Guard{
		channel: channel,
		nav:     nav,
		log:     log.With("component", "guard"),
		last:    undecided,
	}
}

// Decide is the pure transition function: snapshot in, verdict out.
func Decide(snap session.Snapshot) Decision {
	switch {
	case snap.IsLoading:
		return DecisionLoading
	case !snap.IsAuthenticated:
		return DecisionRedirectSignIn
	default:
		return DecisionRender
	}
}

// Apply evaluates snap and runs the verdict's side effects: a render binds
// the channel to the user, anything else unbinds it, and entering the
// redirect verdict replaces the history entry with sign-in exactly once per
// transition.
func (g *Guard) Apply(snap session.Snapshot) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	d := Decide(snap)

	switch d {
	case DecisionRender:
		if err := g.channel.Connect(snap.User.ID); err != nil {
			g.log.Error(context.Background(), "channel bind failed", "userId", snap.User.ID, "error", err)
		}
	case DecisionRedirectSignIn:
		g.channel.Disconnect()
		if g.last != DecisionRedirectSignIn {
			g.nav.Replace(roles.RouteSignIn)
		}
	}

	g.last = d
	return d
}

// Mount applies the store's current snapshot and subscribes to subsequent
// ones. The returned teardown removes the subscription and unbinds the
// channel; leaving it running after the guarded surface goes away would let
// a retry reconnect with stale credentials.
func (g *Guard) Mount(store *session.Store) func() {
	unsubscribe := store.Subscribe(g.onSnapshot)
	g.Apply(store.Snapshot())

	return func() {
		unsubscribe()
		g.channel.Disconnect()

		g.mu.Lock()
		g.last = undecided
		g.mu.Unlock()
	}
}

func (g *Guard) onSnapshot(snap session.Snapshot) {
	g.Apply(snap)
}
