package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memTokens is an in-memory TokenSource for tests.
type memTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	updates int
}

func (m *memTokens) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *memTokens) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *memTokens) UpdateTokens(ctx context.Context, access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
	m.updates++
	return nil
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": success}
	if data != nil {
		body["data"] = data
	}
	if errMsg != "" {
		body["error"] = map[string]string{"message": errMsg}
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestHTTPClient_LoginDecodesTriple(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, pathLogin, r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "ann@example.com", req["email"])

		writeEnvelope(w, http.StatusOK, true, map[string]any{
			"user":         map[string]any{"id": "u1", "username": "ann", "email": "ann@example.com", "roleIds": []string{"r-admin"}},
			"accessToken":  "acc-1",
			"refreshToken": "ref-1",
		}, "")
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &memTokens{}, 5*time.Second)
	res, err := c.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "u1", res.User.ID)
	require.Equal(t, "acc-1", res.AccessToken)
	require.Equal(t, "ref-1", res.RefreshToken)
}

func TestHTTPClient_LoginFailureSurfacesRemoteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, false, nil, "invalid credentials")
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &memTokens{}, 5*time.Second)
	_, err := c.Login(context.Background(), "ann@example.com", "bad")
	require.Equal(t, "invalid credentials", ErrorMessage(err))
}

func TestHTTPClient_NetworkFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewHTTPClient(srv.URL, &memTokens{}, time.Second)
	_, err := c.Login(context.Background(), "ann@example.com", "pw")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &memTokens{}, time.Second)
	err := c.ForgotPassword(context.Background(), "ann@example.com")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_RefreshOnceThenRetry(t *testing.T) {
	var logoutCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case pathLogout:
			logoutCalls++
			if r.Header.Get("Authorization") != "Bearer acc-new" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeEnvelope(w, http.StatusOK, true, nil, "")
		case pathRefreshToken:
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "ref-old", req["refreshToken"])
			writeEnvelope(w, http.StatusOK, true, map[string]string{
				"accessToken": "acc-new", "refreshToken": "ref-new",
			}, "")
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	tokens := &memTokens{access: "acc-old", refresh: "ref-old"}
	c := NewHTTPClient(srv.URL, tokens, 5*time.Second)

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, 2, logoutCalls)
	require.Equal(t, "acc-new", tokens.AccessToken())
	require.Equal(t, "ref-new", tokens.RefreshToken())
	require.Equal(t, 1, tokens.updates)
}

func TestHTTPClient_RefreshFailureIsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tokens := &memTokens{access: "acc-old", refresh: "ref-old"}
	c := NewHTTPClient(srv.URL, tokens, 5*time.Second)

	err := c.Logout(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPClient_NoRefreshTokenMeansUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &memTokens{}, 5*time.Second)
	err := c.SendEmailVerification(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestHTTPClient_Roles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, pathRoles, r.URL.Path)
		writeEnvelope(w, http.StatusOK, true, []map[string]string{
			{"id": "r-admin", "name": "admin", "description": "platform administrator"},
			{"id": "r-coach", "name": "coach", "description": "coach"},
		}, "")
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &memTokens{}, 5*time.Second)
	got, err := c.Roles(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "admin", got[0].Name)
}

func TestHTTPClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, map[string]string{"status": "ok"}, "")
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, &memTokens{}, 5*time.Second)
	require.NoError(t, c.Ping(context.Background()))
}
