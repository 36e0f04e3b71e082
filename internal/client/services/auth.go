// Package services contains application services for the TournOps client.
// This file defines the auth orchestrator: it drives each authentication
// use-case against the platform API, keeps the session store in step, and
// computes post-action navigation from the user's roles.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/matchline/tournops/internal/client/api"
	"github.com/matchline/tournops/internal/client/models"
	"github.com/matchline/tournops/internal/client/roles"
	"github.com/matchline/tournops/internal/client/session"
	"github.com/matchline/tournops/internal/logging"
)

// Navigator performs a route change on behalf of the orchestrator. The REPL
// implements it; tests use a recorder.
type Navigator interface {
	Navigate(route string)
}

// AuthService coordinates the authentication use-cases. All operations share
// one loading/error pair: only the most recent operation's flags are visible.
//
// Contract:
//   - Login/Register: clear any prior session, call the API, commit the new
//     triple guarded by the pre-call generation, navigate once to the route
//     derived from the returned roles.
//   - Logout: best-effort remote invalidation; the local clear and the
//     navigation to sign-in run unconditionally.
//   - Password/email flows: plain round trips; VerifyEmailOTP additionally
//     flips the user's isEmailVerified flag.
//   - An unauthorized reply from any authorized call clears the session and
//     navigates to sign-in.
type AuthService struct {
	api   api.API
	store *session.Store
	nav   Navigator
	log   logging.Logger

	mu        sync.Mutex
	loading   bool
	lastError string

	registryMu sync.Mutex
	registry   []models.Role
}

func NewAuthService(apiClient api.API, store *session.Store, nav Navigator, log logging.Logger) *AuthService {
	return &AuthService{
		api:   apiClient,
		store: store,
		nav:   nav,
		log:   log.With("component", "auth"),
	}
}

// IsLoading reports whether an operation is in flight.
func (a *AuthService) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// Error returns the last operation's human-readable failure, or "".
func (a *AuthService) Error() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastError
}

// ClearError resets the error slot without touching the loading flag.
func (a *AuthService) ClearError() {
	a.mu.Lock()
	a.lastError = ""
	a.mu.Unlock()
}

func (a *AuthService) begin() {
	a.mu.Lock()
	a.loading = true
	a.lastError = ""
	a.mu.Unlock()
}

func (a *AuthService) end(err error) {
	a.mu.Lock()
	a.loading = false
	if err != nil {
		a.lastError = api.ErrorMessage(err)
	}
	a.mu.Unlock()
}

// Login authenticates and returns the destination route on success.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	a.begin()

	route, err := a.signIn(ctx, func(ctx context.Context) (*api.AuthResult, error) {
		return a.api.Login(ctx, email, password)
	})

	a.end(err)
	return route, err
}

// Register creates an account and signs the new user in.
func (a *AuthService) Register(ctx context.Context, req api.RegisterRequest) (string, error) {
	a.begin()

	route, err := a.signIn(ctx, func(ctx context.Context) (*api.AuthResult, error) {
		return a.api.Register(ctx, req)
	})

	a.end(err)
	return route, err
}

// signIn is the shared login/register flow: defensive session reset, remote
// call, generation-guarded commit, single navigation.
func (a *AuthService) signIn(ctx context.Context, call func(context.Context) (*api.AuthResult, error)) (string, error) {
	// Defensive reset so an old triple can never mix with the new one.
	if err := a.store.Logout(ctx); err != nil {
		return "", err
	}
	gen := a.store.Generation()

	res, err := call(ctx)
	if err != nil {
		return "", err
	}

	if err := a.store.LoginAt(ctx, gen, &res.User, res.AccessToken, res.RefreshToken); err != nil {
		// A concurrent logout won; the resolved login is stale and dropped.
		return "", err
	}

	route := a.defaultRoute(ctx, res.User.RoleIDs)
	a.nav.Navigate(route)
	return route, nil
}

// Logout invalidates the session remotely when possible and always clears
// the local session, then navigates to sign-in.
func (a *AuthService) Logout(ctx context.Context) error {
	a.begin()

	defer func() {
		// The local clear and the redirect run whether or not the remote
		// call succeeded.
		if err := a.store.Logout(ctx); err != nil {
			a.log.Error(ctx, "local session clear failed", "error", err)
		}
		a.nav.Navigate(roles.RouteSignIn)
		a.end(nil)
	}()

	if err := a.api.Logout(ctx); err != nil {
		a.log.Warn(ctx, "remote logout failed, clearing local session anyway", "error", err)
	}
	return nil
}

// ChangePassword changes the password of the signed-in user.
func (a *AuthService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return a.roundTrip(ctx, func(ctx context.Context) error {
		return a.api.ChangePassword(ctx, currentPassword, newPassword)
	})
}

// ForgotPassword requests a reset OTP for the given email.
func (a *AuthService) ForgotPassword(ctx context.Context, email string) error {
	return a.roundTrip(ctx, func(ctx context.Context) error {
		return a.api.ForgotPassword(ctx, email)
	})
}

// VerifyOTP checks a password-reset OTP.
func (a *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	return a.roundTrip(ctx, func(ctx context.Context) error {
		return a.api.VerifyOTP(ctx, email, otp)
	})
}

// ResetPassword sets a new password using a verified OTP.
func (a *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return a.roundTrip(ctx, func(ctx context.Context) error {
		return a.api.ResetPassword(ctx, email, otp, newPassword)
	})
}

// SendEmailVerification asks the backend to mail a verification OTP.
func (a *AuthService) SendEmailVerification(ctx context.Context) error {
	return a.roundTrip(ctx, func(ctx context.Context) error {
		return a.api.SendEmailVerification(ctx)
	})
}

// ResendEmailVerification re-sends the verification OTP.
func (a *AuthService) ResendEmailVerification(ctx context.Context) error {
	return a.roundTrip(ctx, func(ctx context.Context) error {
		return a.api.ResendEmailVerification(ctx)
	})
}

// VerifyEmailOTP confirms the email OTP and marks the user verified.
func (a *AuthService) VerifyEmailOTP(ctx context.Context, otp string) error {
	return a.roundTrip(ctx, func(ctx context.Context) error {
		if err := a.api.VerifyEmailOTP(ctx, otp); err != nil {
			return err
		}
		verified := true
		return a.store.UpdateUser(ctx, models.UserPatch{IsEmailVerified: &verified})
	})
}

// roundTrip wraps a single request/response operation with the shared
// loading/error pair and the uniform unauthorized handling.
func (a *AuthService) roundTrip(ctx context.Context, call func(context.Context) error) error {
	a.begin()
	err := call(ctx)
	a.end(err)

	if errors.Is(err, api.ErrUnauthorized) {
		a.expireSession(ctx)
	}
	return err
}

// expireSession clears the session and redirects after the backend rejected
// our credentials beyond repair.
func (a *AuthService) expireSession(ctx context.Context) {
	a.log.Info(ctx, "credentials rejected, clearing session")
	if err := a.store.Logout(ctx); err != nil {
		a.log.Error(ctx, "local session clear failed", "error", err)
	}
	a.nav.Navigate(roles.RouteSignIn)
}

// defaultRoute resolves the landing route for the given role ids, fetching
// and caching the role registry on first use. Registry failures fall back
// to the home route rather than blocking the sign-in.
func (a *AuthService) defaultRoute(ctx context.Context, roleIDs []string) string {
	registry, err := a.roleRegistry(ctx)
	if err != nil {
		a.log.Warn(ctx, "role registry unavailable, using home route", "error", err)
		return roles.RouteHome
	}
	return roles.DefaultRouteForRoles(registry, roleIDs)
}

func (a *AuthService) roleRegistry(ctx context.Context) ([]models.Role, error) {
	a.registryMu.Lock()
	defer a.registryMu.Unlock()

	if a.registry != nil {
		return a.registry, nil
	}

	registry, err := a.api.Roles(ctx)
	if err != nil {
		return nil, err
	}
	a.registry = registry
	return registry, nil
}

// RoleNames resolves role ids to display names via the cached registry.
// Unresolvable ids are skipped; a registry failure yields an empty list.
func (a *AuthService) RoleNames(ctx context.Context, roleIDs []string) []string {
	registry, err := a.roleRegistry(ctx)
	if err != nil {
		a.log.Warn(ctx, "role registry unavailable", "error", err)
		return nil
	}
	return roles.RoleNames(registry, roleIDs)
}

// Ping proxies a liveness probe to the API.
func (a *AuthService) Ping(ctx context.Context) error {
	return a.api.Ping(ctx)
}

// Close releases the underlying API client.
func (a *AuthService) Close() error {
	return a.api.Close()
}
