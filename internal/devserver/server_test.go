package devserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matchline/tournops/internal/client/api"
	"github.com/matchline/tournops/internal/client/notifications"
	"github.com/matchline/tournops/internal/client/repositories/keystore"
	"github.com/matchline/tournops/internal/client/session"
	"github.com/matchline/tournops/internal/logging"
)

type harness struct {
	server *Server
	store  *session.Store
	client *api.HTTPClient
	wsURL  string
}

// newHarness stands up the dev server and a real client stack against it.
func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	hub := NewHub(logging.NewNop())
	hubCtx, cancel := context.WithCancel(ctx)
	t.Cleanup(cancel)
	go hub.Run(hubCtx)

	srv := New(hub, logging.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	db, err := keystore.Open(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := session.NewStore(db, logging.NewNop())
	require.NoError(t, store.Hydrate(ctx))

	return &harness{
		server: srv,
		store:  store,
		client: api.NewHTTPClient(ts.URL, store, 5*time.Second),
		wsURL:  "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/notifications",
	}
}

func TestRegisterLoginLogout_EndToEnd(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.client.Register(ctx, api.RegisterRequest{
		Username: "ann", Email: "ann@example.com", Password: "pw",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.User.ID)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)

	// duplicate email rejected through the envelope
	_, err = h.client.Register(ctx, api.RegisterRequest{
		Username: "ann2", Email: "ann@example.com", Password: "pw",
	})
	var remote *api.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Contains(t, remote.Message, "already exists")

	res, err = h.client.Login(ctx, "ann@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, h.store.Login(ctx, &res.User, res.AccessToken, res.RefreshToken))

	require.NoError(t, h.client.Logout(ctx))
}

func TestLogin_BadCredentials(t *testing.T) {
	h := newHarness(t)
	h.server.Seed("bob", "bob@example.com", "right", "coach")

	_, err := h.client.Login(context.Background(), "bob@example.com", "wrong")
	require.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestRoles_ReturnsFullRegistry(t *testing.T) {
	h := newHarness(t)

	registry, err := h.client.Roles(context.Background())
	require.NoError(t, err)

	names := make([]string, 0, len(registry))
	for _, r := range registry {
		names = append(names, r.Name)
	}
	require.ElementsMatch(t,
		[]string{"admin", "organizer", "chief_referee", "team_manager", "coach", "athlete", "spectator"},
		names)
}

func TestRefreshToken_RetriesExpiredAccess(t *testing.T) {
	h := newHarness(t)
	h.server.Seed("cara", "cara@example.com", "pw", "organizer")
	ctx := context.Background()

	res, err := h.client.Login(ctx, "cara@example.com", "pw")
	require.NoError(t, err)
	require.NoError(t, h.store.Login(ctx, &res.User, "expired-access", res.RefreshToken))

	// The stale access token forces the refresh path before the retry.
	require.NoError(t, h.client.SendEmailVerification(ctx))
	require.NotEqual(t, "expired-access", h.store.AccessToken())
}

func TestPasswordRecoveryFlow(t *testing.T) {
	h := newHarness(t)
	h.server.Seed("dan", "dan@example.com", "old", "athlete")
	ctx := context.Background()

	require.NoError(t, h.client.ForgotPassword(ctx, "dan@example.com"))
	require.NoError(t, h.client.VerifyOTP(ctx, "dan@example.com", DevOTP))
	require.NoError(t, h.client.ResetPassword(ctx, "dan@example.com", DevOTP, "new"))

	_, err := h.client.Login(ctx, "dan@example.com", "old")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	_, err = h.client.Login(ctx, "dan@example.com", "new")
	require.NoError(t, err)
}

func TestEmailVerificationFlow(t *testing.T) {
	h := newHarness(t)
	h.server.Seed("eve", "eve@example.com", "pw", "spectator")
	ctx := context.Background()

	res, err := h.client.Login(ctx, "eve@example.com", "pw")
	require.NoError(t, err)
	require.False(t, res.User.IsEmailVerified)
	require.NoError(t, h.store.Login(ctx, &res.User, res.AccessToken, res.RefreshToken))

	require.NoError(t, h.client.SendEmailVerification(ctx))
	require.NoError(t, h.client.VerifyEmailOTP(ctx, DevOTP))

	res, err = h.client.Login(ctx, "eve@example.com", "pw")
	require.NoError(t, err)
	require.True(t, res.User.IsEmailVerified)
}

func TestHub_DeliversToBoundUserOnly(t *testing.T) {
	h := newHarness(t)
	user := h.server.Seed("fay", "fay@example.com", "pw", "coach")

	m := notifications.NewManager(h.wsURL,
		notifications.Config{BaseDelay: 20 * time.Millisecond, MaxAttempts: 3}, logging.NewNop())
	t.Cleanup(m.Disconnect)

	require.NoError(t, m.Connect(user.ID))
	require.Eventually(t, m.IsConnected, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, h.server.Hub().Notify(user.ID, map[string]any{
		"type":      "match_update",
		"title":     "court 3",
		"message":   "score changed",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}))
	require.NoError(t, h.server.Hub().Notify("someone-else", map[string]any{
		"type":      "reminder",
		"title":     "not yours",
		"message":   "ignore",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}))

	require.Eventually(t, func() bool { return m.UnreadCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	entries := m.Notifications()
	require.Len(t, entries, 1)
	require.Equal(t, "court 3", entries[0].Title)
}
